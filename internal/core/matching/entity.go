package matching

import (
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
)

// CandidateRule は候補抽出用に社員情報と結合した勤務可能時間帯です。
type CandidateRule struct {
	RuleID      string
	EmployeeID  string
	DisplayName string
	Department  string
	Role        identity.Role
	DayOfWeek   time.Weekday
	StartMinute int
	EndMinute   int
	Note        *string
}

// Candidate はシフトを代われる社員です。
type Candidate struct {
	EmployeeID       string
	DisplayName      string
	Department       string
	Role             identity.Role
	AvailabilityNote *string
	AvailableFrom    int
	AvailableTo      int
}

// Verdict はシフトの重複判定結果です。
type Verdict struct {
	Conflicting []*shift.Shift
}

// HasConflict は重複するシフトがあるかを返します。
func (v *Verdict) HasConflict() bool {
	return len(v.Conflicting) > 0
}
