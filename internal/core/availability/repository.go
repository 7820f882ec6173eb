package availability

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// Repository は勤務可能時間帯の永続化を行うインターフェースです。
type Repository interface {
	// Upsert は (社員, 曜日) 単位でルールを作成または更新します。
	Upsert(ctx context.Context, rule *Rule) (*Rule, error)
	FindByID(ctx context.Context, id string) (*Rule, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Rule, error)
	Delete(ctx context.Context, id string) error
}

// EmployeeFinder は社員の存在確認に利用します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}
