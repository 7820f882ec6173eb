package availability

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidID         = apperr.New(apperr.ErrValidation, "availability: invalid id")
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "availability: invalid employee id")
	ErrInvalidDayOfWeek  = apperr.New(apperr.ErrValidation, "availability: day of week must be between 0 and 6")
	ErrInvalidTimeWindow = apperr.New(apperr.ErrValidation, "availability: end time must be after start time")
	ErrRuleNotFound      = apperr.New(apperr.ErrNotFound, "availability: rule not found")
	ErrEmployeeInactive  = apperr.New(apperr.ErrConflict, "availability: employee is inactive")
)
