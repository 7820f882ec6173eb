package availability

import "time"

// Rule は社員ごと・曜日ごとの勤務可能時間帯です。
// 時刻帯は営業タイムゾーンでの 0 時からの分で保持します。
type Rule struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	DayOfWeek   time.Weekday
	StartMinute int
	EndMinute   int
	Note        *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
