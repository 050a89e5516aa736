// Package store provides persistent placeholder store implementations:
// an atomically-replaced JSON file and a SQLite database.
package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrConnectionFailed is returned when the database cannot be opened.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrInvalidData is returned when the store file cannot be decoded.
	ErrInvalidData = errors.New("invalid store data format")

	// ErrWriteFailed is returned when the store cannot be persisted.
	ErrWriteFailed = errors.New("store write failed")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // operation that failed, e.g. "Put"
	Key     string // placeholder key if applicable, "scope/name"
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, key, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Key:     key,
		Message: message,
		Err:     err,
	}
}
