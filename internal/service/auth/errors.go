package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("patient id or pin is incorrect")
	ErrAccountLocked      = errors.New("account temporarily locked due to repeated login failures")
	ErrStaffLoginDisabled = errors.New("staff login is not configured")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
