package domain

import "errors"

var (
	ErrInvalidRedirect      = errors.New("invalid redirect url")
	ErrNotStaff             = errors.New("you are not staff")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrMfaNotSetup          = errors.New("mfa not setup")
	ErrMfaInvalidCode       = errors.New("mfa code is invalid")

	ErrForbidden = errors.New("insufficient permissions")
	ErrNotFound  = errors.New("not found")

	ErrValidation    = errors.New("validation failed")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")

	ErrChunkMissing     = errors.New("chunk does not exist")
	ErrChunkIDExhausted = errors.New("failed to generate a chunk id")
	ErrHashMismatch     = errors.New("sha512 hash does not match")
)
