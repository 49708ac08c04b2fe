package errors

import "errors"

var (
	ErrInvalidSessionInput = errors.New("invalid session input")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrUnknownRole         = errors.New("unknown account role")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user account is deactivated")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionRevoked      = errors.New("session has been revoked")
	ErrSessionExpired      = errors.New("session has expired")
	ErrTokenInvalid        = errors.New("token is malformed or has a bad signature")
)
