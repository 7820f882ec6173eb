package matching

import (
	"sort"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
)

// FilterCandidates は時刻帯 [startMinute, endMinute) と重なるルールから候補を作成します。
// 所有者、busy に含まれる社員、onVacation に含まれる社員を除外し、社員 ID で重複を除きます。
// 結果は表示名、社員 ID の順に並べます。
func FilterCandidates(rules []*CandidateRule, startMinute, endMinute int, ownerID string, busy, onVacation map[string]struct{}) []*Candidate {
	seen := make(map[string]struct{}, len(rules))
	candidates := make([]*Candidate, 0, len(rules))

	for _, rule := range rules {
		if rule == nil || rule.EmployeeID == ownerID {
			continue
		}
		if rule.Role != identity.RoleEmployee {
			continue
		}
		if !calendar.MinutesOverlap(rule.StartMinute, rule.EndMinute, startMinute, endMinute) {
			continue
		}
		if _, ok := busy[rule.EmployeeID]; ok {
			continue
		}
		if _, ok := onVacation[rule.EmployeeID]; ok {
			continue
		}
		if _, ok := seen[rule.EmployeeID]; ok {
			continue
		}
		seen[rule.EmployeeID] = struct{}{}

		candidates = append(candidates, &Candidate{
			EmployeeID:       rule.EmployeeID,
			DisplayName:      rule.DisplayName,
			Department:       rule.Department,
			Role:             rule.Role,
			AvailabilityNote: rule.Note,
			AvailableFrom:    rule.StartMinute,
			AvailableTo:      rule.EndMinute,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DisplayName != candidates[j].DisplayName {
			return candidates[i].DisplayName < candidates[j].DisplayName
		}
		return candidates[i].EmployeeID < candidates[j].EmployeeID
	})
	return candidates
}
