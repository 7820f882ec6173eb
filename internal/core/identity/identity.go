// Package identity は解決済みの呼び出し元を表現します。
package identity

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/apperr"
)

// Role は社員の権限です。
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid は既知の権限であるかを返します。
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Manages は他の社員のデータを操作できる権限かを返します。
func (r Role) Manages() bool {
	return r == RoleManager || r == RoleAdmin
}

var (
	// ErrUnauthenticated は呼び出し元が解決できない場合に返却されます。
	ErrUnauthenticated = apperr.New(apperr.ErrUnauthorized, "identity: caller is not authenticated")
	// ErrNotPermitted は権限が不足している場合に返却されます。
	ErrNotPermitted = apperr.New(apperr.ErrForbidden, "identity: operation not permitted")
	// ErrOtherCompany は会社スコープ外のエンティティを参照した場合に返却されます。
	ErrOtherCompany = apperr.New(apperr.ErrForbidden, "identity: entity belongs to another company")
)

// Caller は認証済みの呼び出し元です。
// EmployeeID は社員に紐づかない外部 ID プロバイダのユーザーでは空になります。
type Caller struct {
	CompanyID  string
	EmployeeID string
	Subject    string
	Role       Role
	Kiosk      bool
}

// Authenticated は会社スコープが確定しているかを返します。
func (c Caller) Authenticated() bool {
	return c.CompanyID != "" && c.Role.Valid()
}

// Require は未認証の呼び出し元を拒否します。
func (c Caller) Require() error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireManager は manager または admin 以外を拒否します。
func (c Caller) RequireManager() error {
	if err := c.Require(); err != nil {
		return err
	}
	if !c.Role.Manages() {
		return ErrNotPermitted
	}
	return nil
}

// RequireEmployee は社員に紐づかない呼び出し元を拒否します。
func (c Caller) RequireEmployee() error {
	if err := c.Require(); err != nil {
		return err
	}
	if c.EmployeeID == "" {
		return ErrNotPermitted
	}
	return nil
}

// RequireCompany は companyID が呼び出し元の会社と一致しない場合に拒否します。
func (c Caller) RequireCompany(companyID string) error {
	if companyID != c.CompanyID {
		return ErrOtherCompany
	}
	return nil
}

// CanActFor は employeeID の社員として操作できるかを返します。
func (c Caller) CanActFor(employeeID string) bool {
	if c.Role.Manages() {
		return true
	}
	return c.EmployeeID != "" && c.EmployeeID == employeeID
}

type callerContextKey struct{}

// WithCaller は ctx に呼び出し元を格納します。
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, c)
}

// FromContext は ctx に格納された呼び出し元を返します。
func FromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	c, ok := ctx.Value(callerContextKey{}).(Caller)
	return c, ok
}
