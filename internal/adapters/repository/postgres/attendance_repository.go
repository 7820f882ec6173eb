package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const timeEntryColumns = `id, company_id, employee_id, shift_id, clock_in_at, clock_out_at, created_at, updated_at`

// AttendanceRepository は出退勤記録の PostgreSQL 実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create は出勤記録を登録します。勤務中の記録は社員ごとに 1 件までです。
func (r *AttendanceRepository) Create(ctx context.Context, entry *attendance.Entry) (*attendance.Entry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	created, err := scanTimeEntry(exec.QueryRow(ctx, `
        INSERT INTO time_entries (company_id, employee_id, shift_id, clock_in_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+timeEntryColumns,
		entry.CompanyID,
		entry.EmployeeID,
		nullableString(entry.ShiftID),
		entry.ClockInAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	))
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// FindOpenForUpdate は勤務中の記録を行ロック付きで取得します。
func (r *AttendanceRepository) FindOpenForUpdate(ctx context.Context, employeeID string) (*attendance.Entry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanTimeEntry(exec.QueryRow(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE employee_id = $1 AND clock_out_at IS NULL
           FOR UPDATE
    `, employeeID))
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// Close は退勤時刻を記録します。
func (r *AttendanceRepository) Close(ctx context.Context, id string, clockOutAt time.Time) (*attendance.Entry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanTimeEntry(exec.QueryRow(ctx, `
        UPDATE time_entries
           SET clock_out_at = $1,
               updated_at = $1
         WHERE id = $2 AND clock_out_at IS NULL
        RETURNING `+timeEntryColumns, clockOutAt, id))
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return updated, nil
}

// ListByEmployee は出勤時刻が [from, to) に含まれる記録を取得します。
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*attendance.Entry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE employee_id = $1 AND clock_in_at >= $2 AND clock_in_at < $3
         ORDER BY clock_in_at ASC
    `, employeeID, from, to)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	var entries []*attendance.Entry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}
	return entries, nil
}

func scanTimeEntry(row pgx.Row) (*attendance.Entry, error) {
	var (
		id, companyID, employeeID string
		shiftID                   sql.NullString
		clockInAt                 time.Time
		clockOutAt                sql.NullTime
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(&id, &companyID, &employeeID, &shiftID, &clockInAt, &clockOutAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrNoOpenEntry
		}
		return nil, translateAttendancePgError(err)
	}

	return &attendance.Entry{
		ID:         id,
		CompanyID:  companyID,
		EmployeeID: employeeID,
		ShiftID:    stringPtr(shiftID),
		ClockInAt:  clockInAt,
		ClockOutAt: timePtr(clockOutAt),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateAttendancePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return attendance.ErrAlreadyClockedIn
		case invalidTextRepresentationCode:
			return attendance.ErrInvalidID
		}
	}
	return err
}
