package shift

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// Repository はシフトの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, shift *Shift) (*Shift, error)
	CreateBatch(ctx context.Context, shifts []*Shift) ([]*Shift, error)
	FindByID(ctx context.Context, id string) (*Shift, error)
	// FindByIDForUpdate はトランザクション内で行ロックを取得して取得します。
	FindByIDForUpdate(ctx context.Context, id string) (*Shift, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Shift, error)
	Reassign(ctx context.Context, id, employeeID string, updatedAt time.Time) (*Shift, error)
	ListRange(ctx context.Context, filter RangeFilter) ([]*Shift, error)
	// DeleteBySource は開始時刻が [from, to) に含まれる source のシフトを削除し、件数を返します。
	DeleteBySource(ctx context.Context, companyID string, source Source, from, to time.Time) (int, error)
	DeleteByVacation(ctx context.Context, vacationRequestID string) (int, error)
}

// RangeFilter は区間 [From, To) と重なるシフトを検索する条件です。
type RangeFilter struct {
	CompanyID   string
	From        time.Time
	To          time.Time
	EmployeeIDs []string
	Statuses    []Status
	Source      *Source
	ExcludeID   string
}

// EmployeeFinder はシフト対象社員の確認に利用します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}
