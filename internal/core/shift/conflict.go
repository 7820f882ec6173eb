package shift

import "time"

// FindConflicts は employeeID の PLANNED シフトのうち [start, end) と重なるものを返します。
// 休暇のプレースホルダも予定を占有しているため対象に含めます。
func FindConflicts(existing []*Shift, employeeID string, start, end time.Time, ignoreID string) []*Shift {
	var conflicts []*Shift
	for _, s := range existing {
		if s == nil || s.EmployeeID != employeeID || s.ID == ignoreID {
			continue
		}
		if s.Status != StatusPlanned {
			continue
		}
		if s.Overlaps(start, end) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}

// BusyEmployees は [start, end) と重なる PLANNED シフトを持つ社員 ID の集合を返します。
func BusyEmployees(existing []*Shift, start, end time.Time) map[string]struct{} {
	busy := make(map[string]struct{})
	for _, s := range existing {
		if s == nil || s.Status != StatusPlanned {
			continue
		}
		if s.Overlaps(start, end) {
			busy[s.EmployeeID] = struct{}{}
		}
	}
	return busy
}
