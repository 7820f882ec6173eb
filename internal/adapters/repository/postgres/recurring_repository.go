package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const recurringColumns = `r.id, r.company_id, r.employee_id, r.day_of_week, r.start_minute, r.end_minute, r.note, r.is_active, r.valid_from, r.valid_until, r.created_at, r.updated_at`

// RecurringRepository は繰り返しルールの PostgreSQL 実装です。
type RecurringRepository struct {
	pool pgdb.Queryer
}

// NewRecurringRepository は RecurringRepository を生成します。
func NewRecurringRepository(pool pgdb.Queryer) *RecurringRepository {
	return &RecurringRepository{pool: pool}
}

// Create はルールを登録します。
func (r *RecurringRepository) Create(ctx context.Context, rule *recurring.Rule) (*recurring.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO recurring_rules AS r (company_id, employee_id, day_of_week, start_minute, end_minute, note, is_active, valid_from, valid_until, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+recurringColumns,
		rule.CompanyID,
		rule.EmployeeID,
		int(rule.DayOfWeek),
		rule.StartMinute,
		rule.EndMinute,
		nullableString(rule.Note),
		rule.IsActive,
		rule.ValidFrom,
		nullableTime(rule.ValidUntil),
		rule.CreatedAt,
		rule.UpdatedAt,
	)

	created, err := scanRecurringRule(row)
	if err != nil {
		return nil, translateRecurringPgError(err)
	}
	return created, nil
}

// FindByID は ID でルールを取得します。
func (r *RecurringRepository) FindByID(ctx context.Context, id string) (*recurring.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanRecurringRule(exec.QueryRow(ctx, `
        SELECT `+recurringColumns+`
          FROM recurring_rules r
         WHERE r.id = $1
    `, id))
	if err != nil {
		return nil, translateRecurringPgError(err)
	}
	return found, nil
}

// List はルールの一覧を取得します。
func (r *RecurringRepository) List(ctx context.Context, filter recurring.ListFilter) ([]*recurring.Rule, error) {
	args := []any{filter.CompanyID}
	conditions := []string{"r.company_id = $1"}

	if filter.EmployeeID != nil {
		conditions = append(conditions, "r.employee_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, *filter.EmployeeID)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "r.is_active")
	}

	return r.query(ctx, `
        SELECT `+recurringColumns+`
          FROM recurring_rules r WHERE `+strings.Join(conditions, " AND ")+`
         ORDER BY r.employee_id ASC, r.day_of_week ASC, r.start_minute ASC
    `, args...)
}

// ListActive は暦日範囲 [from, to] に有効期間が重なり、社員も在籍中のルールを取得します。
func (r *RecurringRepository) ListActive(ctx context.Context, companyID string, from, to time.Time) ([]*recurring.Rule, error) {
	return r.query(ctx, `
        SELECT `+recurringColumns+`
          FROM recurring_rules r
          JOIN employees e ON e.id = r.employee_id
         WHERE r.company_id = $1
           AND r.is_active
           AND e.is_active
           AND r.valid_from <= $2
           AND (r.valid_until IS NULL OR r.valid_until >= $3)
         ORDER BY r.employee_id ASC, r.day_of_week ASC, r.start_minute ASC
    `, companyID, to, from)
}

// Deactivate はルールを無効化します。
func (r *RecurringRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) (*recurring.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanRecurringRule(exec.QueryRow(ctx, `
        UPDATE recurring_rules AS r
           SET is_active = FALSE,
               updated_at = $1
         WHERE r.id = $2
        RETURNING `+recurringColumns, updatedAt, id))
	if err != nil {
		return nil, translateRecurringPgError(err)
	}
	return updated, nil
}

func (r *RecurringRepository) query(ctx context.Context, query string, args ...any) ([]*recurring.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateRecurringPgError(err)
	}
	defer rows.Close()

	var rules []*recurring.Rule
	for rows.Next() {
		rule, err := scanRecurringRule(rows)
		if err != nil {
			return nil, translateRecurringPgError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, translateRecurringPgError(err)
	}
	return rules, nil
}

func scanRecurringRule(row pgx.Row) (*recurring.Rule, error) {
	var (
		id, companyID, employeeID string
		dayOfWeek                 int16
		startMinute, endMinute    int32
		note                      sql.NullString
		isActive                  bool
		validFrom                 time.Time
		validUntil                sql.NullTime
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(&id, &companyID, &employeeID, &dayOfWeek, &startMinute, &endMinute, &note, &isActive, &validFrom, &validUntil, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recurring.ErrRuleNotFound
		}
		return nil, translateRecurringPgError(err)
	}

	return &recurring.Rule{
		ID:          id,
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		DayOfWeek:   time.Weekday(dayOfWeek),
		StartMinute: int(startMinute),
		EndMinute:   int(endMinute),
		Note:        stringPtr(note),
		IsActive:    isActive,
		ValidFrom:   validFrom.UTC(),
		ValidUntil:  utcPtr(timePtr(validUntil)),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := value.UTC()
	return &v
}

func translateRecurringPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return recurring.ErrInvalidID
		case foreignKeyViolationCode:
			return recurring.ErrInvalidEmployeeID
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "recurring_rules_day_of_week_check":
				return recurring.ErrInvalidDayOfWeek
			case "recurring_rules_validity_check":
				return recurring.ErrInvalidValidity
			default:
				return recurring.ErrInvalidTimeWindow
			}
		}
	}
	return err
}
