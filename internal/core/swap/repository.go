package swap

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
)

// Repository はシフト交代依頼の永続化を行うインターフェースです。
type Repository interface {
	// Create は依頼を作成します。同じ (シフト, 候補者) の依頼が存在する場合は ErrDuplicateRequest を返します。
	Create(ctx context.Context, request *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Request, error)
	UpdateStatus(ctx context.Context, id string, status Status, decidedAt time.Time) (*Request, error)
	// RejectPending は shiftID の PENDING 依頼のうち exceptID 以外を REJECTED にし、件数を返します。
	RejectPending(ctx context.Context, shiftID, exceptID string, decidedAt time.Time) (int, error)
	List(ctx context.Context, filter ListFilter) ([]*Request, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	CompanyID   string
	RequesterID *string
	CandidateID *string
	Status      *Status
}

// CandidateResolver はシフトの交代候補を返します。
type CandidateResolver interface {
	Resolve(ctx context.Context, target *shift.Shift) ([]*matching.Candidate, error)
}
