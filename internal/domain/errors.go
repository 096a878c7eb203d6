package domain

import "errors"

// Validation failures are detected locally, before any call leaves the
// process, and are recoverable by correcting the input.
var (
	ErrEmptyField       = errors.New("title and body must not be empty")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Auth failures are remote rejections. Login failures are deliberately
// collapsed into one error so a caller cannot tell an unknown email
// from a wrong password.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
)

// ErrNotFound marks a benign store outcome: the page does not exist or
// belongs to another user. Callers may safely ignore it. Every other
// store error is transient and must be surfaced.
var ErrNotFound = errors.New("page not found")
