package recurring

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidID         = apperr.New(apperr.ErrValidation, "recurring: invalid id")
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "recurring: invalid employee id")
	ErrInvalidDayOfWeek  = apperr.New(apperr.ErrValidation, "recurring: day of week must be between 0 and 6")
	ErrInvalidTimeWindow = apperr.New(apperr.ErrValidation, "recurring: end time must be after start time")
	ErrInvalidValidity   = apperr.New(apperr.ErrValidation, "recurring: valid until must not be before valid from")
	ErrInvalidMode       = apperr.New(apperr.ErrValidation, "recurring: mode must be FILL_MISSING or OVERWRITE_RECURRING")
	ErrInvalidWeekStart  = apperr.New(apperr.ErrValidation, "recurring: week start is required")
	ErrRuleNotFound      = apperr.New(apperr.ErrNotFound, "recurring: rule not found")
	ErrEmployeeInactive  = apperr.New(apperr.ErrConflict, "recurring: employee is inactive")
)

// ErrReservedNote は休暇プレースホルダ用のメモをルールに指定した場合に返却されます。
var ErrReservedNote = apperr.New(apperr.ErrValidation, "recurring: note VAC is reserved for vacation placeholders")
