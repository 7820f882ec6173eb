package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/ogurasousui/shiftboard/internal/adapters/grpc/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout = 10 * time.Second
	readyTimeout    = 2 * time.Second
)

// Check は依存先の疎通確認です。
type Check func(ctx context.Context) error

// Options はサーバー構築時の設定です。HTTPAddr が空の場合は運用 HTTP サーバーを起動しません。
type Options struct {
	ListenAddr  string
	HTTPAddr    string
	Service     *handler.SchedulingService
	Checks      map[string]Check
	Logger      *slog.Logger
	GRPCOptions []grpc.ServerOption
}

// Server は gRPC サーバーと運用 HTTP サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	httpServer *http.Server
	checks     map[string]Check
	logger     *slog.Logger
}

// New は SchedulingService を登録した gRPC サーバーを構築します。
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := grpc.NewServer(opts.GRPCOptions...)
	if opts.Service != nil {
		opts.Service.Register(srv)
	}

	s := &Server{
		listenAddr: opts.ListenAddr,
		grpcServer: srv,
		checks:     opts.Checks,
		logger:     logger,
	}
	if opts.HTTPAddr != "" {
		s.httpServer = &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           s.OpsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return s
}

// OpsHandler は /healthz /readyz /metrics を提供するハンドラを返します。
func (s *Server) OpsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", s.ready)
	return otelhttp.NewHandler(mux, "ops")
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(name + " not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		errCh <- nil
	}()

	if s.httpServer != nil {
		s.logger.Info("ops http server listening", slog.String("addr", s.httpServer.Addr))
		go func() {
			if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve ops http: %w", err)
				return
			}
			errCh <- nil
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	s.GracefulStop()
	return runErr
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("ops http shutdown", slog.Any("error", err))
		}
	}
	s.grpcServer.GracefulStop()
}
