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
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	pgdb "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
)

const employeeColumns = `id, company_id, display_name, employee_code, role, department, is_active, external_subject, pin_hash, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (company_id, display_name, employee_code, role, department, is_active, external_subject, pin_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns,
		e.CompanyID,
		e.DisplayName,
		e.EmployeeCode,
		string(e.Role),
		e.Department,
		e.IsActive,
		nullableString(e.ExternalSubject),
		nullableString(e.PINHash),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET display_name = $1,
               employee_code = $2,
               role = $3,
               department = $4,
               is_active = $5,
               external_subject = $6,
               pin_hash = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+employeeColumns,
		e.DisplayName,
		e.EmployeeCode,
		string(e.Role),
		e.Department,
		e.IsActive,
		nullableString(e.ExternalSubject),
		nullableString(e.PINHash),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByCompanyAndCode は会社と社員コードで社員を取得します。
func (r *EmployeeRepository) FindByCompanyAndCode(ctx context.Context, companyID, employeeCode string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE company_id = $1 AND employee_code = $2
         LIMIT 1
    `, companyID, employeeCode)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByExternalSubject は外部 ID プロバイダのサブジェクトで社員を取得します。
func (r *EmployeeRepository) FindByExternalSubject(ctx context.Context, companyID, subject string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE company_id = $1 AND external_subject = $2
         LIMIT 1
    `, companyID, subject)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 4)

	args = append(args, filter.CompanyID)
	conditions = append(conditions, "company_id = $1")

	if filter.Department != nil {
		conditions = append(conditions, "lower(department) = $"+strconv.Itoa(len(args)+1))
		args = append(args, *filter.Department)
	}
	if filter.Role != nil {
		conditions = append(conditions, "role = $"+strconv.Itoa(len(args)+1))
		args = append(args, string(*filter.Role))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit+1)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY display_name ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		employees = employees[:filter.Limit]
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id, companyID, displayName, code string
		role, department                 string
		isActive                         bool
		subject, pinHash                 sql.NullString
		createdAt, updatedAt             time.Time
	)

	if err := row.Scan(&id, &companyID, &displayName, &code, &role, &department, &isActive, &subject, &pinHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, translateEmployeePgError(err)
	}

	return &employee.Employee{
		ID:              id,
		CompanyID:       companyID,
		DisplayName:     displayName,
		EmployeeCode:    code,
		Role:            identity.Role(role),
		Department:      department,
		IsActive:        isActive,
		ExternalSubject: stringPtr(subject),
		PINHash:         stringPtr(pinHash),
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return employee.ErrInvalidID
		case uniqueViolationCode:
			if pgErr.ConstraintName == "employees_external_subject_key" {
				return employee.ErrSubjectAlreadyLinked
			}
			return employee.ErrEmployeeCodeAlreadyExists
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "employees_company_id_fkey" {
				return employee.ErrCompanyNotFound
			}
			return err
		case checkViolationCode:
			return employee.ErrInvalidRole
		}
	}

	return err
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}

func intPtr(value sql.NullInt32) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int32)
	return &v
}
