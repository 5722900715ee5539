package storage

import (
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = apperrors.ErrNotFound
	// ErrQuotaExceeded is returned by Set when the value does not fit.
	ErrQuotaExceeded = apperrors.ErrQuotaExceeded
)

// Store is a string key/value scope with the semantics of browser storage:
// one tab's private scope, or the scope shared by every tab of an origin.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound
	Get(key string) (string, error)

	// Set creates or replaces the value for key
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys lists every key currently held
	Keys() ([]string, error)
}
