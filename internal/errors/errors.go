package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the session authentication core. Per-request failures
// are normalized to one of these sentinels at the service boundary; nothing
// below this set (query text, driver errors, stack state) crosses into the
// external interface.
var (
	// ErrInvalidCredentials covers both an unknown login_id and a wrong
	// password. The two cases are deliberately merged so callers cannot
	// enumerate accounts from error content.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers every token rejection: missing, expired,
	// tampered, or malformed. The specific cause is logged internally.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateAccount signals a registration collision on a unique field.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrCacheUnavailable signals that the session cache backend could not
	// be reached. Read paths treat it as a cache miss; write paths on login
	// treat it as non-fatal degradation.
	ErrCacheUnavailable = errors.New("session cache unavailable")

	// ErrUnavailable signals a timeout or connectivity failure against the
	// user store or cache. Retryable by the caller with backoff.
	ErrUnavailable = errors.New("service unavailable")

	// ErrAccountNotFound is internal to the core: the user store returns it
	// for an unknown login_id, and the login flow normalizes it to
	// ErrInvalidCredentials before it reaches a caller.
	ErrAccountNotFound = errors.New("account not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
