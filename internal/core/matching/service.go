package matching

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

// Service はシフト交代候補の抽出と重複判定を行います。副作用はありません。
type Service struct {
	repo      Repository
	shifts    shift.Repository
	employees EmployeeFinder
	cal       *calendar.Calendar
	tx        txn.Manager
	logger    *slog.Logger
}

// UseCase は交代候補抽出ユースケースの公開インターフェースです。
type UseCase interface {
	ListCandidates(ctx context.Context, in ListCandidatesInput) ([]*Candidate, error)
	CheckShiftConflict(ctx context.Context, in CheckConflictInput) (*Verdict, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts shift.Repository, employees EmployeeFinder, cal *calendar.Calendar, tx txn.Manager, logger *slog.Logger) *Service {
	if cal == nil {
		cal = calendar.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		shifts:    shifts,
		employees: employees,
		cal:       cal,
		tx:        txn.OrNoop(tx),
		logger:    logger,
	}
}

// ListCandidatesInput は候補抽出時の入力です。
type ListCandidatesInput struct {
	Caller  identity.Caller
	ShiftID string
}

// CheckConflictInput は重複判定時の入力です。
type CheckConflictInput struct {
	Caller        identity.Caller
	EmployeeID    string
	StartAt       time.Time
	EndAt         time.Time
	IgnoreShiftID string
}

// ListCandidates はシフトを代われる社員を返します。
// シフトの所有者、または同じ会社の manager 以上が実行できます。
func (s *Service) ListCandidates(ctx context.Context, in ListCandidatesInput) ([]*Candidate, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	shiftID := strings.TrimSpace(in.ShiftID)
	if shiftID == "" {
		return nil, ErrInvalidShiftID
	}

	var candidates []*Candidate
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		target, err := s.shifts.FindByID(txCtx, shiftID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(target.CompanyID); err != nil {
			return err
		}
		if !in.Caller.CanActFor(target.EmployeeID) {
			return identity.ErrNotPermitted
		}

		result, err := s.Resolve(txCtx, target)
		if err != nil {
			return err
		}
		candidates = result
		return nil
	}); err != nil {
		return nil, err
	}

	return candidates, nil
}

// Resolve は target の交代候補を抽出します。呼び出し元の権限は検証しません。
func (s *Service) Resolve(ctx context.Context, target *shift.Shift) ([]*Candidate, error) {
	startMinute, endMinute, ok := s.cal.DailySpan(target.StartAt, target.EndAt)
	if !ok {
		return nil, ErrOvernightShift
	}

	owner, err := s.employees.FindByID(ctx, target.EmployeeID)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.ListCandidateRules(ctx, RuleFilter{
		CompanyID:  target.CompanyID,
		Department: owner.Department,
		DayOfWeek:  s.cal.Weekday(target.StartAt),
	})
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return []*Candidate{}, nil
	}

	planned, err := s.shifts.ListRange(ctx, shift.RangeFilter{
		CompanyID: target.CompanyID,
		From:      target.StartAt,
		To:        target.EndAt,
		Statuses:  []shift.Status{shift.StatusPlanned},
		ExcludeID: target.ID,
	})
	if err != nil {
		return nil, err
	}
	busy := shift.BusyEmployees(planned, target.StartAt, target.EndAt)

	first, last := s.cal.DateRangeOf(target.StartAt, target.EndAt)
	vacationers, err := s.repo.ListOnVacation(ctx, target.CompanyID, first, last)
	if err != nil {
		return nil, err
	}
	onVacation := make(map[string]struct{}, len(vacationers))
	for _, id := range vacationers {
		onVacation[id] = struct{}{}
	}

	candidates := FilterCandidates(rules, startMinute, endMinute, target.EmployeeID, busy, onVacation)
	s.logger.Debug("shift candidates resolved",
		slog.String("shift_id", target.ID),
		slog.Int("rules", len(rules)),
		slog.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// CheckShiftConflict は社員の PLANNED シフトと区間 [StartAt, EndAt) の重複を判定します。
func (s *Service) CheckShiftConflict(ctx context.Context, in CheckConflictInput) (*Verdict, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if !in.Caller.CanActFor(employeeID) {
		return nil, identity.ErrNotPermitted
	}
	if in.StartAt.IsZero() || !in.EndAt.After(in.StartAt) {
		return nil, ErrInvalidInterval
	}

	verdict := &Verdict{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(emp.CompanyID); err != nil {
			return err
		}

		existing, err := s.shifts.ListRange(txCtx, shift.RangeFilter{
			CompanyID:   emp.CompanyID,
			From:        in.StartAt,
			To:          in.EndAt,
			EmployeeIDs: []string{emp.ID},
			Statuses:    []shift.Status{shift.StatusPlanned},
		})
		if err != nil {
			return err
		}
		verdict.Conflicting = shift.FindConflicts(existing, emp.ID, in.StartAt, in.EndAt, strings.TrimSpace(in.IgnoreShiftID))
		return nil
	}); err != nil {
		return nil, err
	}

	return verdict, nil
}
