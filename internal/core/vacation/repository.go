package vacation

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// Repository は休暇申請の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, request *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	// FindByIDForUpdate はトランザクション内で行ロックを取得して取得します。
	FindByIDForUpdate(ctx context.Context, id string) (*Request, error)
	UpdateDecision(ctx context.Context, id string, decision Decision) (*Request, error)
	// ListOverlapping は employeeID の申請のうち暦日範囲 [start, end] と重なるものを返します。
	ListOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []Status) ([]*Request, error)
	List(ctx context.Context, filter ListFilter) ([]*Request, string, error)
}

// Decision は状態遷移時に保存する値です。
type Decision struct {
	Status    Status
	DecidedAt time.Time
	DecidedBy *string
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	CompanyID  string
	EmployeeID *string
	Status     *Status
	Limit      int
	Offset     int
}

// EmployeeFinder は申請者と決裁者の解決に利用します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindByExternalSubject(ctx context.Context, companyID, subject string) (*employee.Employee, error)
}
