package kiosk

import "time"

// Session は社員コードと PIN で認証したキオスク用の短命なセッションです。
type Session struct {
	Token      string
	CompanyID  string
	EmployeeID string
	ExpiresAt  time.Time
}
