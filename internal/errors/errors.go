package errors

import (
	"errors"
	"fmt"
)

// Common error types for the FitCamp client
var (
	// Storage errors
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Session errors
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors
	ErrValidation = errors.New("validation failed")
	ErrFull       = errors.New("activity is full")
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
