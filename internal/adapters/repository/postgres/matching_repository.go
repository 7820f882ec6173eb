package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

// MatchingRepository は候補抽出用の読み取りクエリを提供します。
type MatchingRepository struct {
	pool pgdb.Queryer
}

// NewMatchingRepository は MatchingRepository を生成します。
func NewMatchingRepository(pool pgdb.Queryer) *MatchingRepository {
	return &MatchingRepository{pool: pool}
}

// ListCandidateRules は部署と曜日が一致する在籍中 employee 権限社員の有効な勤務可能時間帯を返します。
func (r *MatchingRepository) ListCandidateRules(ctx context.Context, filter matching.RuleFilter) ([]*matching.CandidateRule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT a.id, e.id, e.display_name, e.department, e.role, a.day_of_week, a.start_minute, a.end_minute, a.note
          FROM availability_rules a
          JOIN employees e ON e.id = a.employee_id
         WHERE e.company_id = $1
           AND lower(e.department) = lower($2)
           AND e.role = $3
           AND e.is_active
           AND a.is_active
           AND a.day_of_week = $4
         ORDER BY e.display_name ASC, e.id ASC, a.start_minute ASC
    `, filter.CompanyID, filter.Department, string(identity.RoleEmployee), int(filter.DayOfWeek))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*matching.CandidateRule
	for rows.Next() {
		var (
			ruleID, employeeID, displayName string
			department, role                string
			dayOfWeek                       int16
			startMinute, endMinute          int32
			note                            sql.NullString
		)
		if err := rows.Scan(&ruleID, &employeeID, &displayName, &department, &role, &dayOfWeek, &startMinute, &endMinute, &note); err != nil {
			return nil, err
		}
		rules = append(rules, &matching.CandidateRule{
			RuleID:      ruleID,
			EmployeeID:  employeeID,
			DisplayName: displayName,
			Department:  department,
			Role:        identity.Role(role),
			DayOfWeek:   time.Weekday(dayOfWeek),
			StartMinute: int(startMinute),
			EndMinute:   int(endMinute),
			Note:        stringPtr(note),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ListOnVacation は暦日範囲 [from, to] と重なる承認済み休暇を持つ社員 ID を返します。
func (r *MatchingRepository) ListOnVacation(ctx context.Context, companyID string, from, to time.Time) ([]string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT DISTINCT employee_id
          FROM vacation_requests
         WHERE company_id = $1
           AND status = $2
           AND start_date <= $3
           AND end_date >= $4
    `, companyID, string(vacation.StatusApproved), to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
