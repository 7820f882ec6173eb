package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

// Service は繰り返しルールと週次適用のユースケースを提供します。
type Service struct {
	repo      Repository
	shifts    shift.Repository
	employees EmployeeFinder
	cal       *calendar.Calendar
	clock     calendar.Clock
	tx        txn.Manager
	logger    *slog.Logger
}

// UseCase は定期シフトユースケースの公開インターフェースです。
type UseCase interface {
	CreateRule(ctx context.Context, in CreateRuleInput) (*Rule, error)
	ListRules(ctx context.Context, in ListRulesInput) ([]*Rule, error)
	DeactivateRule(ctx context.Context, in DeactivateRuleInput) (*Rule, error)
	ApplyWeek(ctx context.Context, in ApplyWeekInput) (*ApplyResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts shift.Repository, employees EmployeeFinder, cal *calendar.Calendar, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
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
		clock:     calendar.OrSystem(clock),
		tx:        txn.OrNoop(tx),
		logger:    logger,
	}
}

// CreateRuleInput はルール作成時の入力です。ValidFrom が未指定の場合は作成日です。
type CreateRuleInput struct {
	Caller      identity.Caller
	EmployeeID  string
	DayOfWeek   int
	StartMinute int
	EndMinute   int
	Note        *string
	ValidFrom   time.Time
	ValidUntil  *time.Time
}

// ListRulesInput はルール一覧取得時の入力です。
type ListRulesInput struct {
	Caller     identity.Caller
	EmployeeID *string
	ActiveOnly bool
}

// DeactivateRuleInput はルール無効化時の入力です。
type DeactivateRuleInput struct {
	Caller identity.Caller
	ID     string
}

// ApplyWeekInput は週次適用時の入力です。WeekStart は直前の日曜日に正規化します。
type ApplyWeekInput struct {
	Caller    identity.Caller
	WeekStart time.Time
	Mode      Mode
}

// ApplyResult は週次適用の結果です。Shifts は適用後の週内の全シフトです。
type ApplyResult struct {
	WeekStart time.Time
	Mode      Mode
	Created   []*shift.Shift
	Deleted   int
	Shifts    []*shift.Shift
}

// CreateRule は繰り返しルールを作成します。manager 以上が実行できます。
func (s *Service) CreateRule(ctx context.Context, in CreateRuleInput) (*Rule, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.DayOfWeek < int(time.Sunday) || in.DayOfWeek > int(time.Saturday) {
		return nil, ErrInvalidDayOfWeek
	}
	if !calendar.ValidTimeWindow(in.StartMinute, in.EndMinute) {
		return nil, ErrInvalidTimeWindow
	}

	note := normalizeOptional(in.Note)
	if note != nil && strings.EqualFold(*note, shift.VacationNote) {
		return nil, ErrReservedNote
	}

	now := s.clock.Now()
	validFrom := s.cal.DateOf(now)
	if !in.ValidFrom.IsZero() {
		validFrom = calendar.NormalizeDate(in.ValidFrom)
	}
	var validUntil *time.Time
	if in.ValidUntil != nil {
		until := calendar.NormalizeDate(*in.ValidUntil)
		if until.Before(validFrom) {
			return nil, ErrInvalidValidity
		}
		validUntil = &until
	}

	var created *Rule
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

		result, err := s.repo.Create(txCtx, &Rule{
			CompanyID:   emp.CompanyID,
			EmployeeID:  emp.ID,
			DayOfWeek:   time.Weekday(in.DayOfWeek),
			StartMinute: in.StartMinute,
			EndMinute:   in.EndMinute,
			Note:        note,
			IsActive:    true,
			ValidFrom:   validFrom,
			ValidUntil:  validUntil,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// ListRules は会社のルールを返します。employee 権限では自身のルールのみ参照できます。
func (s *Service) ListRules(ctx context.Context, in ListRulesInput) ([]*Rule, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}

	employeeID := normalizeOptional(in.EmployeeID)
	if !in.Caller.Role.Manages() {
		if in.Caller.EmployeeID == "" || (employeeID != nil && *employeeID != in.Caller.EmployeeID) {
			return nil, identity.ErrNotPermitted
		}
		own := in.Caller.EmployeeID
		employeeID = &own
	}

	var rules []*Rule
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, ListFilter{
			CompanyID:  in.Caller.CompanyID,
			EmployeeID: employeeID,
			ActiveOnly: in.ActiveOnly,
		})
		if err != nil {
			return err
		}
		rules = result
		return nil
	}); err != nil {
		return nil, err
	}
	return rules, nil
}

// DeactivateRule はルールを無効化します。生成済みのシフトは変更しません。
func (s *Service) DeactivateRule(ctx context.Context, in DeactivateRuleInput) (*Rule, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Rule
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		rule, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(rule.CompanyID); err != nil {
			return err
		}

		result, err := s.repo.Deactivate(txCtx, rule.ID, s.clock.Now())
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyWeek はルールを対象週のシフトに展開します。全体を 1 トランザクションで実行します。
func (s *Service) ApplyWeek(ctx context.Context, in ApplyWeekInput) (*ApplyResult, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	if !in.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if in.WeekStart.IsZero() {
		return nil, ErrInvalidWeekStart
	}

	weekStart := calendar.WeekStart(in.WeekStart)
	weekLast := weekStart.AddDate(0, 0, 6)
	from := s.cal.DayStart(weekStart)
	to := s.cal.DayEnd(weekLast)
	companyID := in.Caller.CompanyID

	result := &ApplyResult{WeekStart: weekStart, Mode: in.Mode}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if in.Mode == ModeOverwriteRecurring {
			deleted, err := s.shifts.DeleteBySource(txCtx, companyID, shift.SourceRecurring, from, to)
			if err != nil {
				return err
			}
			result.Deleted = deleted
		}

		rules, err := s.repo.ListActive(txCtx, companyID, weekStart, weekLast)
		if err != nil {
			return err
		}

		week := shift.RangeFilter{CompanyID: companyID, From: from, To: to}
		existing, err := s.shifts.ListRange(txCtx, week)
		if err != nil {
			return err
		}

		planned := Plan(s.cal, weekStart, in.Mode, rules, existing, s.clock.Now())
		if len(planned) > 0 {
			created, err := s.shifts.CreateBatch(txCtx, planned)
			if err != nil {
				return err
			}
			result.Created = created
		}

		shifts, err := s.shifts.ListRange(txCtx, week)
		if err != nil {
			return err
		}
		result.Shifts = shifts
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("recurring rules applied",
		slog.String("week_start", weekStart.Format(calendar.DateLayout)),
		slog.String("mode", string(in.Mode)),
		slog.Int("created", len(result.Created)),
		slog.Int("deleted", result.Deleted),
	)
	return result, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
