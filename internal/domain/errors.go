package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user inactive")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrConfirmationPending = errors.New("confirmation pending")
	ErrEmailExists         = errors.New("email already registered")
	ErrEmailRequired       = errors.New("users must have an email")
	ErrPasswordRequired    = errors.New("user must have a password")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrActivationNotFound  = errors.New("activation not found")
	ErrAlreadyActivated    = errors.New("already activated")
	ErrNotMerchant         = errors.New("merchant profile required")
	ErrSessionInvalid      = errors.New("session invalid")
	ErrLockedOut           = errors.New("too many failed login attempts")
)
