package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	"github.com/ogurasousui/shiftboard/internal/platform/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type stubTokenValidator struct {
	token string
	out   identity.Caller
	err   error
}

func (s *stubTokenValidator) ValidateToken(token string) (identity.Caller, error) {
	s.token = token
	return s.out, s.err
}

type capturedCall struct {
	called bool
	caller identity.Caller
}

func (c *capturedCall) handler(ctx context.Context, req any) (any, error) {
	c.called = true
	c.caller, _ = identity.FromContext(ctx)
	return "ok", nil
}

func incoming(pairs ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(pairs...))
}

func TestAuthInterceptor_BearerToken(t *testing.T) {
	t.Parallel()

	tokens := &stubTokenValidator{out: managerCaller}
	interceptor := AuthInterceptor(tokens, &stubKioskUseCase{}, "company-1", PublicMethods)
	call := &capturedCall{}

	_, err := interceptor(incoming("authorization", "Bearer abc.def"), nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("CreateShift")}, call.handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.token != "abc.def" {
		t.Fatalf("unexpected token: %q", tokens.token)
	}
	if !call.called || call.caller != managerCaller {
		t.Fatalf("caller not stored: %+v", call)
	}
}

func TestAuthInterceptor_KioskSessionTakesPrecedence(t *testing.T) {
	t.Parallel()

	kioskCaller := identity.Caller{CompanyID: "company-1", EmployeeID: "emp-1", Role: identity.RoleEmployee, Kiosk: true}
	sessions := &stubKioskUseCase{resolveOut: kioskCaller}
	tokens := &stubTokenValidator{}
	interceptor := AuthInterceptor(tokens, sessions, "company-1", PublicMethods)
	call := &capturedCall{}

	ctx := incoming(KioskSessionHeader, "tok-1", "authorization", "Bearer ignored")
	if _, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("ClockIn")}, call.handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessions.resolveToken != "tok-1" || tokens.token != "" {
		t.Fatalf("kiosk session should be used: session=%q token=%q", sessions.resolveToken, tokens.token)
	}
	if call.caller != kioskCaller {
		t.Fatalf("unexpected caller: %+v", call.caller)
	}
}

func TestAuthInterceptor_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ctx      context.Context
		tokens   *stubTokenValidator
		sessions *stubKioskUseCase
		want     codes.Code
	}{
		{
			name:     "missing credentials",
			ctx:      context.Background(),
			tokens:   &stubTokenValidator{},
			sessions: &stubKioskUseCase{},
			want:     codes.Unauthenticated,
		},
		{
			name:     "malformed header",
			ctx:      incoming("authorization", "Token abc"),
			tokens:   &stubTokenValidator{},
			sessions: &stubKioskUseCase{},
			want:     codes.Unauthenticated,
		},
		{
			name:     "invalid token",
			ctx:      incoming("authorization", "Bearer abc"),
			tokens:   &stubTokenValidator{err: auth.ErrInvalidToken},
			sessions: &stubKioskUseCase{},
			want:     codes.Unauthenticated,
		},
		{
			name:     "expired session",
			ctx:      incoming(KioskSessionHeader, "tok-1"),
			tokens:   &stubTokenValidator{},
			sessions: &stubKioskUseCase{resolveErr: kiosk.ErrSessionNotFound},
			want:     codes.Unauthenticated,
		},
		{
			name:     "other company",
			ctx:      incoming("authorization", "Bearer abc"),
			tokens:   &stubTokenValidator{out: identity.Caller{CompanyID: "company-2", Role: identity.RoleAdmin}},
			sessions: &stubKioskUseCase{},
			want:     codes.PermissionDenied,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			interceptor := AuthInterceptor(tc.tokens, tc.sessions, "company-1", PublicMethods)
			call := &capturedCall{}
			_, err := interceptor(tc.ctx, nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("ListWeekShifts")}, call.handler)
			if status.Code(err) != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if call.called {
				t.Fatalf("handler should not run")
			}
		})
	}
}

func TestAuthInterceptor_PublicMethodSkipsAuth(t *testing.T) {
	t.Parallel()

	interceptor := AuthInterceptor(&stubTokenValidator{err: errors.New("unused")}, &stubKioskUseCase{}, "company-1", PublicMethods)
	call := &capturedCall{}

	if _, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("KioskLogin")}, call.handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !call.called {
		t.Fatalf("handler should run")
	}
}

func TestLoggingInterceptor_LogsOutcome(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	interceptor := LoggingInterceptor(logger)

	failing := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	}
	if _, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("GetEmployee")}, failing); status.Code(err) != codes.NotFound {
		t.Fatalf("error should pass through, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"rpc rejected"`) || !strings.Contains(out, `"code":"NotFound"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestMetricsInterceptor_PassesThrough(t *testing.T) {
	t.Parallel()

	interceptor := MetricsInterceptor()
	call := &capturedCall{}

	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("ClockOut")}, call.handler)
	if err != nil || resp != "ok" || !call.called {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}
}
