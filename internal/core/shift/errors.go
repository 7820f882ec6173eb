package shift

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidID         = apperr.New(apperr.ErrValidation, "shift: invalid id")
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "shift: invalid employee id")
	ErrInvalidInterval   = apperr.New(apperr.ErrValidation, "shift: end must be after start")
	ErrInvalidStatus     = apperr.New(apperr.ErrValidation, "shift: invalid status")
	ErrShiftNotFound     = apperr.New(apperr.ErrNotFound, "shift: not found")
	ErrShiftConflict     = apperr.New(apperr.ErrConflict, "shift: employee already has an overlapping planned shift")
	ErrNotPlanned        = apperr.New(apperr.ErrConflict, "shift: shift is not planned")
	ErrEmployeeInactive  = apperr.New(apperr.ErrConflict, "shift: employee is inactive")
	ErrVacationShift     = apperr.New(apperr.ErrConflict, "shift: vacation placeholders are managed by the vacation workflow")
)
