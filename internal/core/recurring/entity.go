package recurring

import "time"

// Mode は週次適用のモードです。
type Mode string

const (
	// ModeFillMissing は既にシフトがある (社員, 日) を埋めずに残します。
	ModeFillMissing Mode = "FILL_MISSING"
	// ModeOverwriteRecurring は週内の RECURRING シフトを削除してから再生成します。
	ModeOverwriteRecurring Mode = "OVERWRITE_RECURRING"
)

// Valid は既知のモードであるかを返します。
func (m Mode) Valid() bool {
	return m == ModeFillMissing || m == ModeOverwriteRecurring
}

// Rule は曜日ごとに繰り返す勤務テンプレートです。
// ValidFrom と ValidUntil は両端を含む暦日で、ValidUntil が nil の場合は無期限です。
type Rule struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	DayOfWeek   time.Weekday
	StartMinute int
	EndMinute   int
	Note        *string
	IsActive    bool
	ValidFrom   time.Time
	ValidUntil  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AppliesOn は暦日 date にルールが有効かを返します。
func (r *Rule) AppliesOn(date time.Time) bool {
	if !r.IsActive || date.Weekday() != r.DayOfWeek {
		return false
	}
	if date.Before(r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && date.After(*r.ValidUntil) {
		return false
	}
	return true
}
