package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/shiftboard/internal/core/availability"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const availabilityColumns = `id, company_id, employee_id, day_of_week, start_minute, end_minute, note, is_active, created_at, updated_at`

// AvailabilityRepository は勤務可能時間帯の PostgreSQL 実装です。
type AvailabilityRepository struct {
	pool pgdb.Queryer
}

// NewAvailabilityRepository は AvailabilityRepository を生成します。
func NewAvailabilityRepository(pool pgdb.Queryer) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// Upsert は (employee_id, day_of_week) の一意制約を利用してルールを登録・更新します。
func (r *AvailabilityRepository) Upsert(ctx context.Context, rule *availability.Rule) (*availability.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO availability_rules (company_id, employee_id, day_of_week, start_minute, end_minute, note, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (employee_id, day_of_week) DO UPDATE
           SET start_minute = EXCLUDED.start_minute,
               end_minute = EXCLUDED.end_minute,
               note = EXCLUDED.note,
               is_active = EXCLUDED.is_active,
               updated_at = EXCLUDED.updated_at
        RETURNING `+availabilityColumns,
		rule.CompanyID,
		rule.EmployeeID,
		int(rule.DayOfWeek),
		rule.StartMinute,
		rule.EndMinute,
		nullableString(rule.Note),
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)

	saved, err := scanAvailabilityRule(row)
	if err != nil {
		return nil, translateAvailabilityPgError(err)
	}
	return saved, nil
}

// FindByID は ID でルールを取得します。
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*availability.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+availabilityColumns+`
          FROM availability_rules
         WHERE id = $1
    `, id)

	found, err := scanAvailabilityRule(row)
	if err != nil {
		return nil, translateAvailabilityPgError(err)
	}
	return found, nil
}

// ListByEmployee は社員のルールを曜日順に取得します。
func (r *AvailabilityRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*availability.Rule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+availabilityColumns+`
          FROM availability_rules
         WHERE employee_id = $1
         ORDER BY day_of_week ASC
    `, employeeID)
	if err != nil {
		return nil, translateAvailabilityPgError(err)
	}
	defer rows.Close()

	var rules []*availability.Rule
	for rows.Next() {
		rule, err := scanAvailabilityRule(rows)
		if err != nil {
			return nil, translateAvailabilityPgError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, translateAvailabilityPgError(err)
	}
	return rules, nil
}

// Delete はルールを削除します。
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return translateAvailabilityPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return availability.ErrRuleNotFound
	}
	return nil
}

func scanAvailabilityRule(row pgx.Row) (*availability.Rule, error) {
	var (
		id, companyID, employeeID string
		dayOfWeek                 int16
		startMinute, endMinute    int32
		note                      sql.NullString
		isActive                  bool
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(&id, &companyID, &employeeID, &dayOfWeek, &startMinute, &endMinute, &note, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, availability.ErrRuleNotFound
		}
		return nil, translateAvailabilityPgError(err)
	}

	return &availability.Rule{
		ID:          id,
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		DayOfWeek:   time.Weekday(dayOfWeek),
		StartMinute: int(startMinute),
		EndMinute:   int(endMinute),
		Note:        stringPtr(note),
		IsActive:    isActive,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func translateAvailabilityPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return availability.ErrInvalidID
		case foreignKeyViolationCode:
			return availability.ErrInvalidEmployeeID
		case checkViolationCode:
			if pgErr.ConstraintName == "availability_rules_day_of_week_check" {
				return availability.ErrInvalidDayOfWeek
			}
			return availability.ErrInvalidTimeWindow
		}
	}
	return err
}
