package swap

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidID          = apperr.New(apperr.ErrValidation, "swap: invalid id")
	ErrInvalidShiftID     = apperr.New(apperr.ErrValidation, "swap: invalid shift id")
	ErrInvalidCandidateID = apperr.New(apperr.ErrValidation, "swap: invalid candidate id")
	ErrInvalidStatus      = apperr.New(apperr.ErrValidation, "swap: invalid status")
	ErrRequestNotFound    = apperr.New(apperr.ErrNotFound, "swap: request not found")
	ErrNotShiftOwner      = apperr.New(apperr.ErrForbidden, "swap: only the shift owner can request a change")
	ErrNotCandidate       = apperr.New(apperr.ErrForbidden, "swap: only the named candidate can decide")
	ErrDuplicateRequest   = apperr.New(apperr.ErrConflict, "swap: request for this shift and candidate already exists")
	ErrShiftNotPlanned    = apperr.New(apperr.ErrConflict, "swap: shift is not planned")
	ErrVacationShift      = apperr.New(apperr.ErrConflict, "swap: vacation placeholders cannot be exchanged")
	ErrShiftStarted       = apperr.New(apperr.ErrConflict, "swap: shift has already started")
	ErrShiftReassigned    = apperr.New(apperr.ErrConflict, "swap: shift no longer belongs to the requester")
	ErrNotEligible        = apperr.New(apperr.ErrConflict, "swap: candidate is not eligible for this shift")
	ErrCandidateBusy      = apperr.New(apperr.ErrConflict, "swap: candidate already has an overlapping planned shift")
	ErrNotPending         = apperr.New(apperr.ErrConflict, "swap: request is no longer pending")
)
