package recurring

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// Repository は繰り返しルールの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, rule *Rule) (*Rule, error)
	FindByID(ctx context.Context, id string) (*Rule, error)
	List(ctx context.Context, filter ListFilter) ([]*Rule, error)
	// ListActive は暦日範囲 [from, to] に有効期間が重なる有効なルールを返します。
	// 無効化された社員のルールは含みません。
	ListActive(ctx context.Context, companyID string, from, to time.Time) ([]*Rule, error)
	Deactivate(ctx context.Context, id string, updatedAt time.Time) (*Rule, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	CompanyID  string
	EmployeeID *string
	ActiveOnly bool
}

// EmployeeFinder はルール対象社員の確認に利用します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}
