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
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const shiftColumns = `id, company_id, employee_id, start_at, end_at, status, note, source, recurring_rule_id, vacation_request_id, created_at, updated_at`

const shiftInsertArgs = 11

// ShiftRepository はシフトの PostgreSQL 実装です。
type ShiftRepository struct {
	pool pgdb.Queryer
}

// NewShiftRepository は ShiftRepository を生成します。
func NewShiftRepository(pool pgdb.Queryer) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// Create はシフトを 1 件登録します。
func (r *ShiftRepository) Create(ctx context.Context, s *shift.Shift) (*shift.Shift, error) {
	created, err := r.CreateBatch(ctx, []*shift.Shift{s})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateBatch は複数のシフトを 1 文の INSERT で登録します。
func (r *ShiftRepository) CreateBatch(ctx context.Context, shifts []*shift.Shift) ([]*shift.Shift, error) {
	if len(shifts) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(shifts))
	args := make([]any, 0, len(shifts)*shiftInsertArgs)
	for _, s := range shifts {
		placeholders := make([]string, shiftInsertArgs)
		for i := range placeholders {
			placeholders[i] = "$" + strconv.Itoa(len(args)+i+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			s.CompanyID,
			s.EmployeeID,
			s.StartAt,
			s.EndAt,
			string(s.Status),
			nullableString(s.Note),
			string(s.Source),
			nullableString(s.RecurringRuleID),
			nullableString(s.VacationRequestID),
			s.CreatedAt,
			s.UpdatedAt,
		)
	}

	query := `
        INSERT INTO shifts (company_id, employee_id, start_at, end_at, status, note, source, recurring_rule_id, vacation_request_id, created_at, updated_at)
        VALUES ` + strings.Join(values, ", ") + `
        RETURNING ` + shiftColumns

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateShiftPgError(err)
	}
	defer rows.Close()

	created := make([]*shift.Shift, 0, len(shifts))
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, translateShiftPgError(err)
		}
		created = append(created, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateShiftPgError(err)
	}
	return created, nil
}

// FindByID は ID でシフトを取得します。
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*shift.Shift, error) {
	return r.findOne(ctx, `
        SELECT `+shiftColumns+`
          FROM shifts
         WHERE id = $1
    `, id)
}

// FindByIDForUpdate は行ロック付きでシフトを取得します。
func (r *ShiftRepository) FindByIDForUpdate(ctx context.Context, id string) (*shift.Shift, error) {
	return r.findOne(ctx, `
        SELECT `+shiftColumns+`
          FROM shifts
         WHERE id = $1
           FOR UPDATE
    `, id)
}

func (r *ShiftRepository) findOne(ctx context.Context, query string, args ...any) (*shift.Shift, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanShift(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateShiftPgError(err)
	}
	return found, nil
}

// UpdateStatus はシフトの状態を更新します。
func (r *ShiftRepository) UpdateStatus(ctx context.Context, id string, status shift.Status, updatedAt time.Time) (*shift.Shift, error) {
	return r.findOne(ctx, `
        UPDATE shifts
           SET status = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING `+shiftColumns, string(status), updatedAt, id)
}

// Reassign はシフトの担当社員を付け替えます。
func (r *ShiftRepository) Reassign(ctx context.Context, id, employeeID string, updatedAt time.Time) (*shift.Shift, error) {
	return r.findOne(ctx, `
        UPDATE shifts
           SET employee_id = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING `+shiftColumns, employeeID, updatedAt, id)
}

// ListRange は区間 [From, To) と重なるシフトを開始時刻順に取得します。
func (r *ShiftRepository) ListRange(ctx context.Context, filter shift.RangeFilter) ([]*shift.Shift, error) {
	args := []any{filter.CompanyID, filter.To, filter.From}
	conditions := []string{"company_id = $1", "start_at < $2", "end_at > $3"}

	if len(filter.EmployeeIDs) > 0 {
		conditions = append(conditions, "employee_id = ANY($"+strconv.Itoa(len(args)+1)+")")
		args = append(args, filter.EmployeeIDs)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		conditions = append(conditions, "status = ANY($"+strconv.Itoa(len(args)+1)+")")
		args = append(args, statuses)
	}
	if filter.Source != nil {
		conditions = append(conditions, "source = $"+strconv.Itoa(len(args)+1))
		args = append(args, string(*filter.Source))
	}
	if filter.ExcludeID != "" {
		conditions = append(conditions, "id <> $"+strconv.Itoa(len(args)+1))
		args = append(args, filter.ExcludeID)
	}

	query := `
        SELECT ` + shiftColumns + `
          FROM shifts WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY start_at ASC, id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateShiftPgError(err)
	}
	defer rows.Close()

	var shifts []*shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, translateShiftPgError(err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateShiftPgError(err)
	}
	return shifts, nil
}

// DeleteBySource は開始時刻が [from, to) に含まれる指定 source のシフトを削除します。
func (r *ShiftRepository) DeleteBySource(ctx context.Context, companyID string, source shift.Source, from, to time.Time) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        DELETE FROM shifts
         WHERE company_id = $1 AND source = $2 AND start_at >= $3 AND start_at < $4
    `, companyID, string(source), from, to)
	if err != nil {
		return 0, translateShiftPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteByVacation は休暇申請に紐づくプレースホルダを削除します。
func (r *ShiftRepository) DeleteByVacation(ctx context.Context, vacationRequestID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM shifts WHERE vacation_request_id = $1`, vacationRequestID)
	if err != nil {
		return 0, translateShiftPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanShift(row pgx.Row) (*shift.Shift, error) {
	var (
		id, companyID, employeeID string
		startAt, endAt            time.Time
		status, source            string
		note                      sql.NullString
		ruleID, vacationID        sql.NullString
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(&id, &companyID, &employeeID, &startAt, &endAt, &status, &note, &source, &ruleID, &vacationID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, translateShiftPgError(err)
	}

	return &shift.Shift{
		ID:                id,
		CompanyID:         companyID,
		EmployeeID:        employeeID,
		StartAt:           startAt,
		EndAt:             endAt,
		Status:            shift.Status(status),
		Note:              stringPtr(note),
		Source:            shift.Source(source),
		RecurringRuleID:   stringPtr(ruleID),
		VacationRequestID: stringPtr(vacationID),
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

func translateShiftPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return shift.ErrInvalidID
		case foreignKeyViolationCode:
			return shift.ErrInvalidEmployeeID
		case checkViolationCode:
			if pgErr.ConstraintName == "shifts_interval_check" {
				return shift.ErrInvalidInterval
			}
			return shift.ErrInvalidStatus
		}
	}
	return err
}
