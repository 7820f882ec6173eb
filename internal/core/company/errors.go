package company

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = apperr.New(apperr.ErrNotFound, "company: not found")
	// ErrCodeAlreadyExists はコード重複時に返却されます。
	ErrCodeAlreadyExists = apperr.New(apperr.ErrConflict, "company: code already exists")
	// ErrInvalidName は会社名が不正な場合に返却されます。
	ErrInvalidName = apperr.New(apperr.ErrValidation, "company: invalid name")
	// ErrInvalidCode は会社コードが不正な場合に返却されます。
	ErrInvalidCode = apperr.New(apperr.ErrValidation, "company: invalid code")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = apperr.New(apperr.ErrValidation, "company: invalid id")
)
