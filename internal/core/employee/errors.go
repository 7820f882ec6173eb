package employee

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidID                 = apperr.New(apperr.ErrValidation, "employee: invalid id")
	ErrInvalidDisplayName        = apperr.New(apperr.ErrValidation, "employee: invalid display name")
	ErrInvalidEmployeeCode       = apperr.New(apperr.ErrValidation, "employee: invalid employee code")
	ErrInvalidRole               = apperr.New(apperr.ErrValidation, "employee: invalid role")
	ErrInvalidDepartment         = apperr.New(apperr.ErrValidation, "employee: invalid department")
	ErrInvalidPIN                = apperr.New(apperr.ErrValidation, "employee: pin must be 4 to 8 digits")
	ErrInvalidPageSize           = apperr.New(apperr.ErrValidation, "employee: invalid page size")
	ErrInvalidPageToken          = apperr.New(apperr.ErrValidation, "employee: invalid page token")
	ErrEmployeeNotFound          = apperr.New(apperr.ErrNotFound, "employee: not found")
	ErrCompanyNotFound           = apperr.New(apperr.ErrNotFound, "employee: company not found")
	ErrEmployeeCodeAlreadyExists = apperr.New(apperr.ErrConflict, "employee: employee code already exists")
	ErrSubjectAlreadyLinked      = apperr.New(apperr.ErrConflict, "employee: external subject already linked")
)
