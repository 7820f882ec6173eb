package handler

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/platform/auth"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenValidator は Bearer トークンを呼び出し元に変換します。
type TokenValidator interface {
	ValidateToken(token string) (identity.Caller, error)
}

// SessionResolver はキオスクのセッショントークンを呼び出し元に変換します。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (identity.Caller, error)
}

// AuthInterceptor は呼び出し元を解決して context に格納します。
// x-kiosk-session があればキオスクセッションを、なければ authorization の Bearer トークンを使用します。
// companyID 以外の会社に属する呼び出し元は拒否します。
func AuthInterceptor(tokens TokenValidator, sessions SessionResolver, companyID string, public []string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if slices.Contains(public, info.FullMethod) {
			return next(ctx, req)
		}

		caller, err := resolveCaller(ctx, tokens, sessions)
		if err != nil {
			return nil, toStatusError(err)
		}
		if err := caller.RequireCompany(companyID); err != nil {
			return nil, toStatusError(err)
		}

		return next(identity.WithCaller(ctx, caller), req)
	}
}

func resolveCaller(ctx context.Context, tokens TokenValidator, sessions SessionResolver) (identity.Caller, error) {
	if token := sessionToken(ctx); token != "" {
		return sessions.Resolve(ctx, token)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return identity.Caller{}, identity.ErrUnauthenticated
	}
	token, err := auth.ExtractToken(values[0])
	if err != nil {
		return identity.Caller{}, err
	}
	return tokens.ValidateToken(token)
}

// LoggingInterceptor は RPC ごとに結果を構造化ログへ出力します。
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		}

		switch code {
		case codes.OK:
			logger.Info("rpc completed", attrs...)
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			logger.Error("rpc failed", append(attrs, slog.Any("error", err))...)
		default:
			logger.Warn("rpc rejected", append(attrs, slog.Any("error", err))...)
		}
		return resp, err
	}
}

// MetricsInterceptor は RPC の件数と処理時間を記録します。
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		metrics.ObserveGRPCRequest(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
