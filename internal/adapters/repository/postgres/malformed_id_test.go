package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/shiftboard/internal/core/apperr"
	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/availability"
	"github.com/ogurasousui/shiftboard/internal/core/company"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestTranslatePgError_MalformedID(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: invalidTextRepresentationCode, Message: `invalid input syntax for type uuid: "nope"`}

	cases := []struct {
		name      string
		translate func(error) error
		want      error
	}{
		{name: "attendance", translate: translateAttendancePgError, want: attendance.ErrInvalidID},
		{name: "availability", translate: translateAvailabilityPgError, want: availability.ErrInvalidID},
		{name: "company", translate: translateCompanyPgError, want: company.ErrInvalidID},
		{name: "employee", translate: translateEmployeePgError, want: employee.ErrInvalidID},
		{name: "recurring", translate: translateRecurringPgError, want: recurring.ErrInvalidID},
		{name: "shift", translate: translateShiftPgError, want: shift.ErrInvalidID},
		{name: "swap", translate: translateSwapPgError, want: swap.ErrInvalidID},
		{name: "vacation", translate: translateVacationPgError, want: vacation.ErrInvalidID},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.translate(pgErr)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if !errors.Is(got, apperr.ErrValidation) {
				t.Fatalf("expected validation kind, got %v", apperr.KindOf(got))
			}
		})
	}
}

func TestShiftRepository_FindByID_MalformedID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shifts`)).
		WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: invalidTextRepresentationCode})

	if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, shift.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVacationRepository_FindByIDForUpdate_MalformedID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewVacationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("x").
		WillReturnError(&pgconn.PgError{Code: invalidTextRepresentationCode})

	if _, err := repo.FindByIDForUpdate(context.Background(), "x"); !errors.Is(err, vacation.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
