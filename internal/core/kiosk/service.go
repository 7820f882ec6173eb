package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL はセッション有効期間の既定値です。
const DefaultSessionTTL = 12 * time.Hour

// Service はキオスクのログインとセッション解決を担います。
type Service struct {
	store     SessionStore
	employees EmployeeFinder
	ttl       time.Duration
	clock     calendar.Clock
	newToken  func() string
	logger    *slog.Logger
}

// UseCase はキオスクユースケースの公開インターフェースです。
type UseCase interface {
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Resolve(ctx context.Context, token string) (identity.Caller, error)
	Logout(ctx context.Context, token string) error
}

// NewService は Service を生成します。ttl が 0 以下の場合は DefaultSessionTTL を使用します。
func NewService(store SessionStore, employees EmployeeFinder, ttl time.Duration, clock calendar.Clock, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		employees: employees,
		ttl:       ttl,
		clock:     calendar.OrSystem(clock),
		newToken:  uuid.NewString,
		logger:    logger,
	}
}

// LoginInput はキオスクログイン時の入力です。CompanyID は起動時に解決したテナントです。
type LoginInput struct {
	CompanyID    string
	EmployeeCode string
	PIN          string
}

// Login は社員コードと PIN を検証し、新しいセッションを発行します。
// 失敗理由は区別せず ErrInvalidCredentials を返します。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	code := strings.TrimSpace(in.EmployeeCode)
	if in.CompanyID == "" || code == "" || in.PIN == "" {
		return nil, ErrInvalidInput
	}

	emp, err := s.employees.FindByCompanyAndCode(ctx, in.CompanyID, code)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !emp.IsActive || !emp.HasPIN() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PINHash), []byte(in.PIN)); err != nil {
		s.logger.Warn("kiosk login rejected", slog.String("employee_id", emp.ID))
		return nil, ErrInvalidCredentials
	}

	session := &Session{
		Token:      s.newToken(),
		CompanyID:  emp.CompanyID,
		EmployeeID: emp.ID,
		ExpiresAt:  s.clock.Now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("kiosk: save session: %w", err)
	}

	s.logger.Info("kiosk session started", slog.String("employee_id", emp.ID))
	return session, nil
}

// Resolve はセッショントークンを呼び出し元に変換します。
// キオスクの呼び出し元は社員本人として扱い、権限は常に employee です。
func (s *Service) Resolve(ctx context.Context, token string) (identity.Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Caller{}, ErrSessionNotFound
	}

	session, err := s.store.Load(ctx, token)
	if err != nil {
		return identity.Caller{}, err
	}
	if !s.clock.Now().Before(session.ExpiresAt) {
		return identity.Caller{}, ErrSessionNotFound
	}

	return identity.Caller{
		CompanyID:  session.CompanyID,
		EmployeeID: session.EmployeeID,
		Role:       identity.RoleEmployee,
		Kiosk:      true,
	}, nil
}

// Logout はセッションを破棄します。存在しないセッションは無視します。
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("kiosk: delete session: %w", err)
	}
	return nil
}
