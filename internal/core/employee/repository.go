package employee

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByCompanyAndCode(ctx context.Context, companyID, employeeCode string) (*Employee, error)
	FindByExternalSubject(ctx context.Context, companyID, subject string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	CompanyID  string
	Department *string
	Role       *identity.Role
	ActiveOnly bool
	Limit      int
	Offset     int
}
