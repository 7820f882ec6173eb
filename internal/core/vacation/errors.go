package vacation

import (
	"fmt"

	"github.com/ogurasousui/shiftboard/internal/core/apperr"
)

var (
	ErrInvalidID            = apperr.New(apperr.ErrValidation, "vacation: invalid id")
	ErrInvalidEmployeeID    = apperr.New(apperr.ErrValidation, "vacation: invalid employee id")
	ErrInvalidDateRange     = apperr.New(apperr.ErrValidation, "vacation: end date must not be before start date")
	ErrInvalidPartialWindow = apperr.New(apperr.ErrValidation, "vacation: partial window requires a single day and an end after the start")
	ErrInvalidStatus        = apperr.New(apperr.ErrValidation, "vacation: invalid status")
	ErrInvalidPageSize      = apperr.New(apperr.ErrValidation, "vacation: invalid page size")
	ErrInvalidPageToken     = apperr.New(apperr.ErrValidation, "vacation: invalid page token")
	ErrRequestNotFound      = apperr.New(apperr.ErrNotFound, "vacation: request not found")
	ErrOverlappingRequest   = apperr.New(apperr.ErrConflict, "vacation: overlapping pending or approved request exists")
	ErrShiftConflict        = apperr.New(apperr.ErrConflict, "vacation: employee has planned work in the requested range")
	ErrInvalidTransition    = apperr.New(apperr.ErrConflict, "vacation: invalid status transition")
)

// TransitionError は許可されていない状態遷移を表します。
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("vacation: cannot move request from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
