package matching

import (
	"context"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
)

// Repository は候補抽出に必要な読み取りを提供します。
type Repository interface {
	// ListCandidateRules は条件に一致する有効な勤務可能時間帯を返します。
	// 有効な employee 権限の社員のみを対象とし、取得順は安定している必要があります。
	ListCandidateRules(ctx context.Context, filter RuleFilter) ([]*CandidateRule, error)
	// ListOnVacation は暦日範囲 [from, to] と重なる APPROVED の休暇を持つ社員 ID を返します。
	ListOnVacation(ctx context.Context, companyID string, from, to time.Time) ([]string, error)
}

// RuleFilter は勤務可能時間帯の検索条件です。
type RuleFilter struct {
	CompanyID  string
	Department string
	DayOfWeek  time.Weekday
}

// EmployeeFinder はシフト所有者の部署解決に利用します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}
