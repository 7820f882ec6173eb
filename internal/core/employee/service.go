package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

var (
	employeeCodePattern = regexp.MustCompile(`^[0-9]{3,10}$`)
	pinPattern          = regexp.MustCompile(`^[0-9]{4,8}$`)
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	clock   calendar.Clock
	tx      txn.Manager
	logger  *slog.Logger
	pinCost int
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	SetKioskPIN(ctx context.Context, in SetKioskPINInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		clock:   calendar.OrSystem(clock),
		tx:      txn.OrNoop(tx),
		logger:  logger,
		pinCost: bcrypt.DefaultCost,
	}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Caller          identity.Caller
	DisplayName     string
	EmployeeCode    string
	Role            identity.Role
	Department      string
	ExternalSubject *string
}

// UpdateEmployeeInput は社員更新時の入力です。
type UpdateEmployeeInput struct {
	Caller      identity.Caller
	ID          string
	DisplayName *string
	Role        *identity.Role
	Department  *string
	IsActive    *bool
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	Caller identity.Caller
	ID     string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Caller     identity.Caller
	Department *string
	ActiveOnly bool
	PageSize   int
	PageToken  string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// SetKioskPINInput はキオスク PIN 設定時の入力です。
type SetKioskPINInput struct {
	Caller identity.Caller
	ID     string
	PIN    string
}

// CreateEmployee は新しい社員を作成します。admin のみ実行できます。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}

	name, err := normalizeDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}

	code, err := normalizeEmployeeCode(in.EmployeeCode)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = identity.RoleEmployee
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	department, err := normalizeDepartment(in.Department)
	if err != nil {
		return nil, err
	}

	subject := normalizeOptional(in.ExternalSubject)

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeCodeNotExists(txCtx, in.Caller.CompanyID, code); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			CompanyID:       in.Caller.CompanyID,
			DisplayName:     name,
			EmployeeCode:    code,
			Role:            role,
			Department:      department,
			IsActive:        true,
			ExternalSubject: subject,
			CreatedAt:       now,
			UpdatedAt:       now,
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

// UpdateEmployee は社員情報を更新します。admin のみ実行できます。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.findInCompany(txCtx, in.Caller, in.ID)
		if err != nil {
			return err
		}

		if in.DisplayName != nil {
			name, err := normalizeDisplayName(*in.DisplayName)
			if err != nil {
				return err
			}
			existing.DisplayName = name
		}

		if in.Role != nil {
			if !in.Role.Valid() {
				return ErrInvalidRole
			}
			existing.Role = *in.Role
		}

		if in.Department != nil {
			department, err := normalizeDepartment(*in.Department)
			if err != nil {
				return err
			}
			existing.Department = department
		}

		if in.IsActive != nil {
			existing.IsActive = *in.IsActive
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
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

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.findInCompany(txCtx, in.Caller, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は会社の社員一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	department := normalizeOptional(in.Department)
	if department != nil {
		lower := strings.ToLower(*department)
		department = &lower
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			CompanyID:  in.Caller.CompanyID,
			Department: department,
			ActiveOnly: in.ActiveOnly,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// SetKioskPIN はキオスク用 PIN を bcrypt でハッシュ化して保存します。
// 本人または manager 以上が実行できます。
func (s *Service) SetKioskPIN(ctx context.Context, in SetKioskPINInput) error {
	if err := in.Caller.Require(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	if !in.Caller.CanActFor(in.ID) {
		return identity.ErrNotPermitted
	}
	if !pinPattern.MatchString(in.PIN) {
		return ErrInvalidPIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.PIN), s.pinCost)
	if err != nil {
		return fmt.Errorf("employee: hash pin: %w", err)
	}
	encoded := string(hash)

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.findInCompany(txCtx, in.Caller, in.ID)
		if err != nil {
			return err
		}

		existing.PINHash = &encoded
		existing.UpdatedAt = s.clock.Now()

		if _, err := s.repo.Update(txCtx, existing); err != nil {
			return err
		}

		s.logger.Info("kiosk pin updated", slog.String("employee_id", existing.ID))
		return nil
	})
}

func (s *Service) findInCompany(ctx context.Context, caller identity.Caller, id string) (*Employee, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := caller.RequireCompany(found.CompanyID); err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Service) ensureEmployeeCodeNotExists(ctx context.Context, companyID, code string) error {
	emp, err := s.repo.FindByCompanyAndCode(ctx, companyID, code)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmployeeCodeAlreadyExists
	}
	return nil
}

func requireAdmin(caller identity.Caller) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if caller.Role != identity.RoleAdmin {
		return identity.ErrNotPermitted
	}
	return nil
}

func normalizeDisplayName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDisplayName
	}
	return trimmed, nil
}

func normalizeEmployeeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !employeeCodePattern.MatchString(trimmed) {
		return "", ErrInvalidEmployeeCode
	}
	return trimmed, nil
}

func normalizeDepartment(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDepartment
	}
	return strings.ToLower(trimmed), nil
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

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
