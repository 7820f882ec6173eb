package availability

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

// Service は勤務可能時間帯のユースケースを提供します。
type Service struct {
	repo      Repository
	employees EmployeeFinder
	clock     calendar.Clock
	tx        txn.Manager
	logger    *slog.Logger
}

// UseCase は勤務可能時間ユースケースの公開インターフェースです。
type UseCase interface {
	SetRule(ctx context.Context, in SetRuleInput) (*Rule, error)
	ListRules(ctx context.Context, in ListRulesInput) ([]*Rule, error)
	DeleteRule(ctx context.Context, in DeleteRuleInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeFinder, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		employees: employees,
		clock:     calendar.OrSystem(clock),
		tx:        txn.OrNoop(tx),
		logger:    logger,
	}
}

// SetRuleInput はルール設定時の入力です。IsActive が nil の場合は有効として扱います。
type SetRuleInput struct {
	Caller      identity.Caller
	EmployeeID  string
	DayOfWeek   int
	StartMinute int
	EndMinute   int
	Note        *string
	IsActive    *bool
}

// ListRulesInput はルール一覧取得時の入力です。
type ListRulesInput struct {
	Caller     identity.Caller
	EmployeeID string
}

// DeleteRuleInput はルール削除時の入力です。
type DeleteRuleInput struct {
	Caller identity.Caller
	ID     string
}

// SetRule は曜日ごとのルールを作成または置き換えます。
func (s *Service) SetRule(ctx context.Context, in SetRuleInput) (*Rule, error) {
	employeeID, err := s.authorize(in.Caller, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if in.DayOfWeek < int(time.Sunday) || in.DayOfWeek > int(time.Saturday) {
		return nil, ErrInvalidDayOfWeek
	}
	if !calendar.ValidTimeWindow(in.StartMinute, in.EndMinute) {
		return nil, ErrInvalidTimeWindow
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	var saved *Rule
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

		now := s.clock.Now()
		result, err := s.repo.Upsert(txCtx, &Rule{
			CompanyID:   emp.CompanyID,
			EmployeeID:  emp.ID,
			DayOfWeek:   time.Weekday(in.DayOfWeek),
			StartMinute: in.StartMinute,
			EndMinute:   in.EndMinute,
			Note:        normalizeNote(in.Note),
			IsActive:    active,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		saved = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Debug("availability rule saved",
		slog.String("employee_id", saved.EmployeeID),
		slog.Int("day_of_week", int(saved.DayOfWeek)),
	)
	return saved, nil
}

// ListRules は社員のルールを曜日順に返します。
func (s *Service) ListRules(ctx context.Context, in ListRulesInput) ([]*Rule, error) {
	employeeID, err := s.authorize(in.Caller, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var rules []*Rule
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(emp.CompanyID); err != nil {
			return err
		}

		result, err := s.repo.ListByEmployee(txCtx, emp.ID)
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

// DeleteRule はルールを削除します。
func (s *Service) DeleteRule(ctx context.Context, in DeleteRuleInput) error {
	if err := in.Caller.Require(); err != nil {
		return err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		rule, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(rule.CompanyID); err != nil {
			return err
		}
		if !in.Caller.CanActFor(rule.EmployeeID) {
			return identity.ErrNotPermitted
		}
		return s.repo.Delete(txCtx, rule.ID)
	})
}

// authorize は対象社員 ID を確定し、呼び出し元が操作可能かを検証します。
// 空の場合は呼び出し元自身を対象とします。
func (s *Service) authorize(caller identity.Caller, employeeID string) (string, error) {
	if err := caller.Require(); err != nil {
		return "", err
	}

	id := strings.TrimSpace(employeeID)
	if id == "" {
		id = caller.EmployeeID
	}
	if id == "" {
		return "", ErrInvalidEmployeeID
	}
	if !caller.CanActFor(id) {
		return "", identity.ErrNotPermitted
	}
	return id, nil
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
