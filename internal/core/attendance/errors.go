package attendance

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrAlreadyClockedIn = apperr.New(apperr.ErrConflict, "attendance: employee is already clocked in")
	ErrNoOpenEntry      = apperr.New(apperr.ErrNotFound, "attendance: no open time entry")
	ErrInvalidRange     = apperr.New(apperr.ErrValidation, "attendance: invalid range")
	ErrInvalidID        = apperr.New(apperr.ErrValidation, "attendance: invalid id")
)
