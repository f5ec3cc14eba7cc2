package services

import "errors"

// Authentication error taxonomy. Identifier-not-found and wrong-password both
// surface as ErrInvalidCredentials so callers cannot enumerate accounts.
// Signature, expiry and revocation failures all collapse to ErrInvalidToken
// for the same reason.
var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrAccountLocked         = errors.New("account is locked")
	ErrAccountDisabled       = errors.New("account is disabled")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrUserExists            = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
)
