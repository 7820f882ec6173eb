package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

var codePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Service はテナント会社の解決を担います。
type Service struct {
	repo   Repository
	clock  calendar.Clock
	tx     txn.Manager
	logger *slog.Logger
}

// NewService は Service を生成します。
func NewService(repo Repository, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, clock: calendar.OrSystem(clock), tx: txn.OrNoop(tx), logger: logger}
}

// EnsureTenantInput はテナント解決時の入力です。
type EnsureTenantInput struct {
	Name string
	Code string
}

// EnsureTenant はコードで会社を検索し、存在しなければ作成します。
// プロセス起動時に一度だけ呼び出し、結果の ID を以降の全操作へ明示的に渡します。
func (s *Service) EnsureTenant(ctx context.Context, in EnsureTenantInput) (*Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	code, err := normalizeCode(in.Code)
	if err != nil {
		return nil, err
	}

	var tenant *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByCode(txCtx, code)
		if err == nil {
			tenant = found
			return nil
		}
		if !errors.Is(err, ErrCompanyNotFound) {
			return err
		}

		now := s.clock.Now()
		created, err := s.repo.Create(txCtx, &Company{
			Name:      name,
			Code:      code,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		s.logger.Info("tenant company created", slog.String("company_id", created.ID), slog.String("code", code))
		tenant = created
		return nil
	}); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetCompany は ID で会社を取得します。
func (s *Service) GetCompany(ctx context.Context, id string) (*Company, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

func normalizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidCode
	}

	lower := strings.ToLower(trimmed)
	if !codePattern.MatchString(lower) {
		return "", ErrInvalidCode
	}

	return lower, nil
}
