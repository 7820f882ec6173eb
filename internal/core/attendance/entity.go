package attendance

import "time"

// Entry はキオスクでの出退勤記録です。ClockOutAt が nil の間は勤務中です。
type Entry struct {
	ID         string
	CompanyID  string
	EmployeeID string
	ShiftID    *string
	ClockInAt  time.Time
	ClockOutAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open は退勤前の記録かを返します。
func (e *Entry) Open() bool {
	return e.ClockOutAt == nil
}
