package shift

import "time"

// Status はシフトの状態です。
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid は既知の状態であるかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Source はシフトの生成元です。
type Source string

const (
	SourceManual    Source = "MANUAL"
	SourceRecurring Source = "RECURRING"
)

// VacationNote は休暇による予定ブロックを表すメモです。
const VacationNote = "VAC"

// Shift は社員に割り当てられた勤務区間 [StartAt, EndAt) です。
type Shift struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	StartAt           time.Time
	EndAt             time.Time
	Status            Status
	Note              *string
	Source            Source
	RecurringRuleID   *string
	VacationRequestID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsVacation は休暇のプレースホルダであるかを返します。
func (s *Shift) IsVacation() bool {
	return s.Note != nil && *s.Note == VacationNote
}

// Busy は勤務予定として表示すべきシフトかを返します。休暇のプレースホルダは含みません。
func (s *Shift) Busy() bool {
	return s.Status == StatusPlanned && !s.IsVacation()
}

// Overlaps は区間 [start, end) と重なるかを返します。
func (s *Shift) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && s.EndAt.After(start)
}
