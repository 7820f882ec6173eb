package matching

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidShiftID    = apperr.New(apperr.ErrValidation, "matching: invalid shift id")
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "matching: invalid employee id")
	ErrInvalidInterval   = apperr.New(apperr.ErrValidation, "matching: end must be after start")
	// ErrOvernightShift は日をまたぐシフトに対して返却されます。時刻帯の比較が定義できないため候補抽出の対象外です。
	ErrOvernightShift = apperr.New(apperr.ErrValidation, "matching: shifts crossing midnight are not supported for candidate matching")
)
