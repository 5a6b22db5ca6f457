package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrConflict       = errors.New("resource already exists")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcomes. All of them are expected, user-facing results.
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// RateLimitError is returned while a client is locked out.
// Locked is true only on the check that moved the client into the locked state.
type RateLimitError struct {
	Remaining time.Duration
	Locked    bool
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrRateLimited.Error(), e.Remaining)
}

// Is lets callers match with errors.Is(err, ErrRateLimited)
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// InvalidCredentialsError carries the number of attempts left before lockout.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("%s: %d attempts remaining", ErrInvalidCredentials.Error(), e.AttemptsRemaining)
}

// Is lets callers match with errors.Is(err, ErrInvalidCredentials)
func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}
