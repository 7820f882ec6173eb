package kiosk

import "github.com/ogurasousui/shiftboard/internal/core/apperr"

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "kiosk: invalid employee code or pin")
	ErrSessionNotFound    = apperr.New(apperr.ErrUnauthorized, "kiosk: session not found or expired")
	ErrInvalidInput       = apperr.New(apperr.ErrValidation, "kiosk: employee code and pin are required")
)
