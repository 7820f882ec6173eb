package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "validation", err: vacation.ErrInvalidDateRange, want: codes.InvalidArgument},
		{name: "not found", err: vacation.ErrRequestNotFound, want: codes.NotFound},
		{name: "forbidden", err: identity.ErrNotPermitted, want: codes.PermissionDenied},
		{name: "unauthorized", err: kiosk.ErrInvalidCredentials, want: codes.Unauthenticated},
		{name: "conflict", err: vacation.ErrShiftConflict, want: codes.FailedPrecondition},
		{name: "clocked in", err: attendance.ErrAlreadyClockedIn, want: codes.FailedPrecondition},
		{name: "duplicate request", err: swap.ErrDuplicateRequest, want: codes.AlreadyExists},
		{name: "duplicate code", err: fmt.Errorf("create: %w", employee.ErrEmployeeCodeAlreadyExists), want: codes.AlreadyExists},
		{name: "malformed id", err: attendance.ErrInvalidID, want: codes.InvalidArgument},
		{name: "unclassified", err: errors.New("boom"), want: codes.Internal},
		{name: "status passthrough", err: status.Error(codes.InvalidArgument, "bad"), want: codes.InvalidArgument},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := status.Code(toStatusError(tc.err)); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if toStatusError(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
