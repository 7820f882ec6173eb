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
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const swapColumns = `id, company_id, shift_id, requester_id, candidate_id, message, status, decided_at, created_at, updated_at`

// SwapRepository はシフト交代依頼の PostgreSQL 実装です。
type SwapRepository struct {
	pool pgdb.Queryer
}

// NewSwapRepository は SwapRepository を生成します。
func NewSwapRepository(pool pgdb.Queryer) *SwapRepository {
	return &SwapRepository{pool: pool}
}

// Create は依頼を登録します。PENDING の (shift_id, candidate_id) は部分一意インデックスで一意です。
func (r *SwapRepository) Create(ctx context.Context, req *swap.Request) (*swap.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	created, err := scanSwapRequest(exec.QueryRow(ctx, `
        INSERT INTO shift_change_requests (company_id, shift_id, requester_id, candidate_id, message, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+swapColumns,
		req.CompanyID,
		req.ShiftID,
		req.RequesterID,
		req.CandidateID,
		nullableString(req.Message),
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	))
	if err != nil {
		return nil, translateSwapPgError(err)
	}
	return created, nil
}

// FindByID は ID で依頼を取得します。
func (r *SwapRepository) FindByID(ctx context.Context, id string) (*swap.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanSwapRequest(exec.QueryRow(ctx, `
        SELECT `+swapColumns+`
          FROM shift_change_requests
         WHERE id = $1
    `, id))
	if err != nil {
		return nil, translateSwapPgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は行ロック付きで依頼を取得します。
func (r *SwapRepository) FindByIDForUpdate(ctx context.Context, id string) (*swap.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanSwapRequest(exec.QueryRow(ctx, `
        SELECT `+swapColumns+`
          FROM shift_change_requests
         WHERE id = $1
           FOR UPDATE
    `, id))
	if err != nil {
		return nil, translateSwapPgError(err)
	}
	return found, nil
}

// UpdateStatus は依頼の状態を更新します。
func (r *SwapRepository) UpdateStatus(ctx context.Context, id string, status swap.Status, decidedAt time.Time) (*swap.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanSwapRequest(exec.QueryRow(ctx, `
        UPDATE shift_change_requests
           SET status = $1,
               decided_at = $2,
               updated_at = $2
         WHERE id = $3
        RETURNING `+swapColumns, string(status), decidedAt, id))
	if err != nil {
		return nil, translateSwapPgError(err)
	}
	return updated, nil
}

// RejectPending は同じシフトの他の PENDING 依頼をまとめて却下します。
func (r *SwapRepository) RejectPending(ctx context.Context, shiftID, exceptID string, decidedAt time.Time) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE shift_change_requests
           SET status = $1,
               decided_at = $2,
               updated_at = $2
         WHERE shift_id = $3 AND id <> $4 AND status = $5
    `, string(swap.StatusRejected), decidedAt, shiftID, exceptID, string(swap.StatusPending))
	if err != nil {
		return 0, translateSwapPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

// List は依頼を新しい順に取得します。
func (r *SwapRepository) List(ctx context.Context, filter swap.ListFilter) ([]*swap.Request, error) {
	args := []any{filter.CompanyID}
	conditions := []string{"company_id = $1"}

	if filter.RequesterID != nil {
		conditions = append(conditions, "requester_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, *filter.RequesterID)
	}
	if filter.CandidateID != nil {
		conditions = append(conditions, "candidate_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, *filter.CandidateID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)+1))
		args = append(args, string(*filter.Status))
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+swapColumns+`
          FROM shift_change_requests WHERE `+strings.Join(conditions, " AND ")+`
         ORDER BY created_at DESC, id DESC
    `, args...)
	if err != nil {
		return nil, translateSwapPgError(err)
	}
	defer rows.Close()

	var requests []*swap.Request
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, translateSwapPgError(err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, translateSwapPgError(err)
	}
	return requests, nil
}

func scanSwapRequest(row pgx.Row) (*swap.Request, error) {
	var (
		id, companyID, shiftID   string
		requesterID, candidateID string
		message                  sql.NullString
		status                   string
		decidedAt                sql.NullTime
		createdAt, updatedAt     time.Time
	)

	if err := row.Scan(&id, &companyID, &shiftID, &requesterID, &candidateID, &message, &status, &decidedAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, swap.ErrRequestNotFound
		}
		return nil, translateSwapPgError(err)
	}

	return &swap.Request{
		ID:          id,
		CompanyID:   companyID,
		ShiftID:     shiftID,
		RequesterID: requesterID,
		CandidateID: candidateID,
		Message:     stringPtr(message),
		Status:      swap.Status(status),
		DecidedAt:   timePtr(decidedAt),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func translateSwapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return swap.ErrInvalidID
		case uniqueViolationCode:
			return swap.ErrDuplicateRequest
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "shift_change_requests_shift_id_fkey" {
				return swap.ErrInvalidShiftID
			}
			return swap.ErrInvalidCandidateID
		}
	}
	return err
}
