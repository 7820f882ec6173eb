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
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const vacationColumns = `id, company_id, employee_id, start_date, end_date, partial_start_minute, partial_end_minute, reason, status, decided_at, decided_by, created_at, updated_at`

// VacationRepository は休暇申請の PostgreSQL 実装です。
type VacationRepository struct {
	pool pgdb.Queryer
}

// NewVacationRepository は VacationRepository を生成します。
func NewVacationRepository(pool pgdb.Queryer) *VacationRepository {
	return &VacationRepository{pool: pool}
}

// Create は休暇申請を登録します。
func (r *VacationRepository) Create(ctx context.Context, req *vacation.Request) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO vacation_requests (company_id, employee_id, start_date, end_date, partial_start_minute, partial_end_minute, reason, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+vacationColumns,
		req.CompanyID,
		req.EmployeeID,
		req.StartDate,
		req.EndDate,
		nullableInt(req.PartialStartMinute),
		nullableInt(req.PartialEndMinute),
		nullableString(req.Reason),
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	)

	created, err := scanVacationRequest(row)
	if err != nil {
		return nil, translateVacationPgError(err)
	}
	return created, nil
}

// FindByID は ID で休暇申請を取得します。
func (r *VacationRepository) FindByID(ctx context.Context, id string) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanVacationRequest(exec.QueryRow(ctx, `
        SELECT `+vacationColumns+`
          FROM vacation_requests
         WHERE id = $1
    `, id))
	if err != nil {
		return nil, translateVacationPgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は行ロック付きで休暇申請を取得します。
func (r *VacationRepository) FindByIDForUpdate(ctx context.Context, id string) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanVacationRequest(exec.QueryRow(ctx, `
        SELECT `+vacationColumns+`
          FROM vacation_requests
         WHERE id = $1
           FOR UPDATE
    `, id))
	if err != nil {
		return nil, translateVacationPgError(err)
	}
	return found, nil
}

// UpdateDecision は状態と決裁情報を保存します。
func (r *VacationRepository) UpdateDecision(ctx context.Context, id string, decision vacation.Decision) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanVacationRequest(exec.QueryRow(ctx, `
        UPDATE vacation_requests
           SET status = $1,
               decided_at = $2,
               decided_by = $3,
               updated_at = $2
         WHERE id = $4
        RETURNING `+vacationColumns,
		string(decision.Status),
		decision.DecidedAt,
		nullableString(decision.DecidedBy),
		id,
	))
	if err != nil {
		return nil, translateVacationPgError(err)
	}
	return updated, nil
}

// ListOverlapping は暦日範囲 [start, end] と重なる申請を取得します。
func (r *VacationRepository) ListOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []vacation.Status) ([]*vacation.Request, error) {
	args := []any{employeeID, end, start}
	query := `
        SELECT ` + vacationColumns + `
          FROM vacation_requests
         WHERE employee_id = $1 AND start_date <= $2 AND end_date >= $3`
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		query += ` AND status = ANY($4)`
		args = append(args, values)
	}
	query += `
         ORDER BY start_date ASC, id ASC
    `

	return r.query(ctx, query, args...)
}

// List は休暇申請の一覧を取得します。
func (r *VacationRepository) List(ctx context.Context, filter vacation.ListFilter) ([]*vacation.Request, string, error) {
	if filter.Limit <= 0 {
		return nil, "", vacation.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", vacation.ErrInvalidPageToken
	}

	args := []any{filter.CompanyID}
	conditions := []string{"company_id = $1"}

	if filter.EmployeeID != nil {
		conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)+1))
		args = append(args, string(*filter.Status))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit+1)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + vacationColumns + `
          FROM vacation_requests WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY start_date DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	requests, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(requests) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		requests = requests[:filter.Limit]
	}
	return requests, nextToken, nil
}

func (r *VacationRepository) query(ctx context.Context, query string, args ...any) ([]*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateVacationPgError(err)
	}
	defer rows.Close()

	var requests []*vacation.Request
	for rows.Next() {
		req, err := scanVacationRequest(rows)
		if err != nil {
			return nil, translateVacationPgError(err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, translateVacationPgError(err)
	}
	return requests, nil
}

func scanVacationRequest(row pgx.Row) (*vacation.Request, error) {
	var (
		id, companyID, employeeID string
		startDate, endDate        time.Time
		partialStart, partialEnd  sql.NullInt32
		reason                    sql.NullString
		status                    string
		decidedAt                 sql.NullTime
		decidedBy                 sql.NullString
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(&id, &companyID, &employeeID, &startDate, &endDate, &partialStart, &partialEnd, &reason, &status, &decidedAt, &decidedBy, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vacation.ErrRequestNotFound
		}
		return nil, translateVacationPgError(err)
	}

	return &vacation.Request{
		ID:                 id,
		CompanyID:          companyID,
		EmployeeID:         employeeID,
		StartDate:          startDate.UTC(),
		EndDate:            endDate.UTC(),
		PartialStartMinute: intPtr(partialStart),
		PartialEndMinute:   intPtr(partialEnd),
		Reason:             stringPtr(reason),
		Status:             vacation.Status(status),
		DecidedAt:          timePtr(decidedAt),
		DecidedBy:          stringPtr(decidedBy),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

func translateVacationPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return vacation.ErrInvalidID
		case foreignKeyViolationCode:
			return vacation.ErrInvalidEmployeeID
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "vacation_requests_partial_check":
				return vacation.ErrInvalidPartialWindow
			case "vacation_requests_status_check":
				return vacation.ErrInvalidStatus
			default:
				return vacation.ErrInvalidDateRange
			}
		}
	}
	return err
}
