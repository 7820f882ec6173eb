package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

// Service は出退勤のユースケースを提供します。
type Service struct {
	repo   Repository
	shifts shift.Repository
	clock  calendar.Clock
	tx     txn.Manager
	logger *slog.Logger
}

// UseCase は勤怠打刻ユースケースの公開インターフェースです。
type UseCase interface {
	ClockIn(ctx context.Context, in ClockInput) (*Entry, error)
	ClockOut(ctx context.Context, in ClockInput) (*ClockOutResult, error)
	ListEntries(ctx context.Context, in ListEntriesInput) ([]*Entry, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts shift.Repository, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		shifts: shifts,
		clock:  calendar.OrSystem(clock),
		tx:     txn.OrNoop(tx),
		logger: logger,
	}
}

// ClockInput は出退勤打刻時の入力です。
type ClockInput struct {
	Caller identity.Caller
}

// ClockOutResult は退勤結果です。Shift は COMPLETED にしたシフトで、紐づかない場合は nil です。
type ClockOutResult struct {
	Entry *Entry
	Shift *shift.Shift
}

// ListEntriesInput は記録一覧取得時の入力です。EmployeeID が空の場合は呼び出し元自身です。
type ListEntriesInput struct {
	Caller     identity.Caller
	EmployeeID string
	From       time.Time
	To         time.Time
}

// ClockIn は出勤を記録します。現在時刻を含む PLANNED のシフトがあれば紐づけます。
func (s *Service) ClockIn(ctx context.Context, in ClockInput) (*Entry, error) {
	if err := in.Caller.RequireEmployee(); err != nil {
		return nil, err
	}

	var created *Entry
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		open, err := s.repo.FindOpenForUpdate(txCtx, in.Caller.EmployeeID)
		if err != nil && !errors.Is(err, ErrNoOpenEntry) {
			return err
		}
		if open != nil {
			return ErrAlreadyClockedIn
		}

		now := s.clock.Now()
		covering, err := s.shifts.ListRange(txCtx, shift.RangeFilter{
			CompanyID:   in.Caller.CompanyID,
			From:        now,
			To:          now.Add(time.Microsecond),
			EmployeeIDs: []string{in.Caller.EmployeeID},
			Statuses:    []shift.Status{shift.StatusPlanned},
		})
		if err != nil {
			return err
		}

		entry := &Entry{
			CompanyID:  in.Caller.CompanyID,
			EmployeeID: in.Caller.EmployeeID,
			ClockInAt:  now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, candidate := range covering {
			if candidate.Busy() {
				id := candidate.ID
				entry.ShiftID = &id
				break
			}
		}

		result, err := s.repo.Create(txCtx, entry)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("clocked in", slog.String("employee_id", created.EmployeeID), slog.Bool("linked_shift", created.ShiftID != nil))
	return created, nil
}

// ClockOut は勤務中の記録を締め、紐づくシフトを COMPLETED にします。
func (s *Service) ClockOut(ctx context.Context, in ClockInput) (*ClockOutResult, error) {
	if err := in.Caller.RequireEmployee(); err != nil {
		return nil, err
	}

	result := &ClockOutResult{}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		open, err := s.repo.FindOpenForUpdate(txCtx, in.Caller.EmployeeID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		closed, err := s.repo.Close(txCtx, open.ID, now)
		if err != nil {
			return err
		}
		result.Entry = closed

		if closed.ShiftID == nil {
			return nil
		}

		linked, err := s.shifts.FindByIDForUpdate(txCtx, *closed.ShiftID)
		if err != nil {
			if errors.Is(err, shift.ErrShiftNotFound) {
				return nil
			}
			return err
		}
		if linked.Status != shift.StatusPlanned {
			return nil
		}

		completed, err := s.shifts.UpdateStatus(txCtx, linked.ID, shift.StatusCompleted, now)
		if err != nil {
			return err
		}
		result.Shift = completed
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("clocked out", slog.String("employee_id", result.Entry.EmployeeID))
	return result, nil
}

// ListEntries は期間 [From, To) に出勤した記録を返します。
func (s *Service) ListEntries(ctx context.Context, in ListEntriesInput) ([]*Entry, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	if in.From.IsZero() || !in.To.After(in.From) {
		return nil, ErrInvalidRange
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		employeeID = in.Caller.EmployeeID
	}
	if employeeID == "" || !in.Caller.CanActFor(employeeID) {
		return nil, identity.ErrNotPermitted
	}

	var entries []*Entry
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByEmployee(txCtx, employeeID, in.From, in.To)
		if err != nil {
			return err
		}
		entries = make([]*Entry, 0, len(result))
		for _, entry := range result {
			if entry.CompanyID == in.Caller.CompanyID {
				entries = append(entries, entry)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return entries, nil
}
