package recurring

import (
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
)

type occupancyKey struct {
	employeeID string
	date       time.Time
}

// Plan は weekStart から始まる 7 日間について、ルールから生成すべきシフトを返します。
// existing は週内の既存シフトで、ModeFillMissing では既にシフトがある (社員, 日) をスキップします。
// 状態を問わず既存シフトは日を占有しているとみなします。
func Plan(cal *calendar.Calendar, weekStart time.Time, mode Mode, rules []*Rule, existing []*shift.Shift, now time.Time) []*shift.Shift {
	weekStart = calendar.NormalizeDate(weekStart)

	occupied := make(map[occupancyKey]struct{}, len(existing))
	for _, s := range existing {
		occupied[occupancyKey{employeeID: s.EmployeeID, date: cal.DateOf(s.StartAt)}] = struct{}{}
	}

	var planned []*shift.Shift
	for _, rule := range rules {
		if rule == nil || rule.EndMinute <= rule.StartMinute {
			continue
		}

		offset := (int(rule.DayOfWeek) - int(weekStart.Weekday()) + 7) % 7
		day := weekStart.AddDate(0, 0, offset)
		if !rule.AppliesOn(day) {
			continue
		}

		if mode == ModeFillMissing {
			if _, ok := occupied[occupancyKey{employeeID: rule.EmployeeID, date: day}]; ok {
				continue
			}
		}

		ruleID := rule.ID
		planned = append(planned, &shift.Shift{
			CompanyID:       rule.CompanyID,
			EmployeeID:      rule.EmployeeID,
			StartAt:         cal.At(day, rule.StartMinute).UTC(),
			EndAt:           cal.At(day, rule.EndMinute).UTC(),
			Status:          shift.StatusPlanned,
			Note:            cloneNote(rule.Note),
			Source:          shift.SourceRecurring,
			RecurringRuleID: &ruleID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return planned
}

func cloneNote(note *string) *string {
	if note == nil {
		return nil
	}
	copied := *note
	return &copied
}
