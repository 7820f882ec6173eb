package attendance

import (
	"context"
	"time"
)

// Repository は出退勤記録の永続化を行うインターフェースです。
type Repository interface {
	// Create は記録を作成します。勤務中の記録が既にある場合は ErrAlreadyClockedIn を返します。
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	// FindOpenForUpdate は勤務中の記録を行ロック付きで返します。存在しない場合は ErrNoOpenEntry です。
	FindOpenForUpdate(ctx context.Context, employeeID string) (*Entry, error)
	Close(ctx context.Context, id string, clockOutAt time.Time) (*Entry, error)
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*Entry, error)
}
