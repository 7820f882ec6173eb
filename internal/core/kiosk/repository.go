package kiosk

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// SessionStore はキオスクセッションの保存先です。
type SessionStore interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	// Load はセッションを返します。存在しない場合は ErrSessionNotFound を返します。
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// EmployeeFinder は社員コードからの社員解決に利用します。
type EmployeeFinder interface {
	FindByCompanyAndCode(ctx context.Context, companyID, employeeCode string) (*employee.Employee, error)
}
