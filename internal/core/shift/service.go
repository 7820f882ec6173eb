package shift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

// Service はシフトのユースケースを提供します。
type Service struct {
	repo      Repository
	employees EmployeeFinder
	cal       *calendar.Calendar
	clock     calendar.Clock
	tx        txn.Manager
	logger    *slog.Logger
}

// UseCase はシフトユースケースの公開インターフェースです。
type UseCase interface {
	CreateShift(ctx context.Context, in CreateShiftInput) (*Shift, error)
	CancelShift(ctx context.Context, in ChangeStatusInput) (*Shift, error)
	CompleteShift(ctx context.Context, in ChangeStatusInput) (*Shift, error)
	ListWeek(ctx context.Context, in ListWeekInput) (*WeekView, error)
}

// NewService は Service を生成します。cal が nil の場合は UTC を営業タイムゾーンとします。
func NewService(repo Repository, employees EmployeeFinder, cal *calendar.Calendar, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if cal == nil {
		cal = calendar.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		employees: employees,
		cal:       cal,
		clock:     calendar.OrSystem(clock),
		tx:        txn.OrNoop(tx),
		logger:    logger,
	}
}

// CreateShiftInput は手動シフト作成時の入力です。
type CreateShiftInput struct {
	Caller     identity.Caller
	EmployeeID string
	StartAt    time.Time
	EndAt      time.Time
	Note       *string
}

// ChangeStatusInput はシフトの状態変更時の入力です。
type ChangeStatusInput struct {
	Caller identity.Caller
	ID     string
}

// ListWeekInput は週表示の入力です。WeekStart は任意の日付を受け付け、直前の日曜日に正規化します。
type ListWeekInput struct {
	Caller           identity.Caller
	WeekStart        time.Time
	EmployeeID       string
	IncludeCancelled bool
}

// WeekView は 1 週間分のシフトです。
type WeekView struct {
	WeekStart time.Time
	Shifts    []*Shift
}

// CreateShift は手動シフトを作成します。同じ社員の PLANNED シフトと重なる場合は失敗します。
func (s *Service) CreateShift(ctx context.Context, in CreateShiftInput) (*Shift, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.StartAt.IsZero() || !in.EndAt.After(in.StartAt) {
		return nil, ErrInvalidInterval
	}

	note := normalizeNote(in.Note)
	if note != nil && strings.EqualFold(*note, VacationNote) {
		return nil, ErrVacationShift
	}

	var created *Shift
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(emp.CompanyID); err != nil {
			return err
		}
		if !emp.IsActive {
			return ErrEmployeeInactive
		}

		conflicts, err := s.Conflicts(txCtx, emp.CompanyID, emp.ID, in.StartAt, in.EndAt, "")
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%w (shift %s)", ErrShiftConflict, conflicts[0].ID)
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Shift{
			CompanyID:  emp.CompanyID,
			EmployeeID: emp.ID,
			StartAt:    in.StartAt.UTC(),
			EndAt:      in.EndAt.UTC(),
			Status:     StatusPlanned,
			Note:       note,
			Source:     SourceManual,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("shift created",
		slog.String("shift_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
	)
	return created, nil
}

// Conflicts は employeeID の PLANNED シフトのうち [start, end) と重なるものを返します。
// トランザクション内から呼び出されることを想定しています。
func (s *Service) Conflicts(ctx context.Context, companyID, employeeID string, start, end time.Time, ignoreShiftID string) ([]*Shift, error) {
	existing, err := s.repo.ListRange(ctx, RangeFilter{
		CompanyID:   companyID,
		From:        start,
		To:          end,
		EmployeeIDs: []string{employeeID},
		Statuses:    []Status{StatusPlanned},
		ExcludeID:   ignoreShiftID,
	})
	if err != nil {
		return nil, err
	}
	return FindConflicts(existing, employeeID, start, end, ignoreShiftID), nil
}

// CancelShift は PLANNED のシフトを CANCELLED にします。
func (s *Service) CancelShift(ctx context.Context, in ChangeStatusInput) (*Shift, error) {
	return s.transition(ctx, in, StatusCancelled)
}

// CompleteShift は PLANNED のシフトを COMPLETED にします。
func (s *Service) CompleteShift(ctx context.Context, in ChangeStatusInput) (*Shift, error) {
	return s.transition(ctx, in, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, in ChangeStatusInput, to Status) (*Shift, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Shift
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(current.CompanyID); err != nil {
			return err
		}
		if current.IsVacation() {
			return ErrVacationShift
		}
		if current.Status != StatusPlanned {
			return ErrNotPlanned
		}

		result, err := s.repo.UpdateStatus(txCtx, current.ID, to, s.clock.Now())
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("shift status changed",
		slog.String("shift_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)
	return updated, nil
}

// ListWeek は会社の 1 週間分のシフトを開始時刻順に返します。
func (s *Service) ListWeek(ctx context.Context, in ListWeekInput) (*WeekView, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	if in.WeekStart.IsZero() {
		return nil, ErrInvalidInterval
	}

	weekStart := calendar.WeekStart(in.WeekStart)
	filter := RangeFilter{
		CompanyID: in.Caller.CompanyID,
		From:      s.cal.DayStart(weekStart),
		To:        s.cal.DayStart(weekStart.AddDate(0, 0, 7)),
		Statuses:  []Status{StatusPlanned, StatusCompleted},
	}
	if in.IncludeCancelled {
		filter.Statuses = append(filter.Statuses, StatusCancelled)
	}
	if employeeID := strings.TrimSpace(in.EmployeeID); employeeID != "" {
		filter.EmployeeIDs = []string{employeeID}
	}

	var shifts []*Shift
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListRange(txCtx, filter)
		if err != nil {
			return err
		}
		shifts = result
		return nil
	}); err != nil {
		return nil, err
	}

	return &WeekView{WeekStart: weekStart, Shifts: shifts}, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
