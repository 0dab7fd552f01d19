// Package errors provides error handling for filestore.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := store.Create(realm); err != nil {
//	    return errors.Wrap(err, "failed to create realm")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrConflict) {
//	    // handle duplicate
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Assertions
var (
	AssertionFailedf     = crdb.AssertionFailedf
	WithAssertionFailure = crdb.WithAssertionFailure
	HasAssertionFailure  = crdb.HasAssertionFailure
)

// Sentinel errors shared by the stores, the provider cache and the providers.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = New("not found")

	// ErrInvalidArgument indicates a call was made with an unusable argument,
	// such as a nil entity or an entity without an identifier
	ErrInvalidArgument = New("invalid argument")

	// ErrConflict indicates an entity with the same identity already exists
	ErrConflict = New("entity conflict")

	// ErrTypeMismatch indicates a cached provider does not have the requested type
	ErrTypeMismatch = New("provider type mismatch")

	// ErrClosed indicates the session or component has already been closed
	ErrClosed = New("closed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidArgumentError checks if an error is or wraps ErrInvalidArgument
func IsInvalidArgumentError(err error) bool {
	return err != nil && Is(err, ErrInvalidArgument)
}

// IsConflictError checks if an error is or wraps ErrConflict
func IsConflictError(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewInvalidArgumentError creates an invalid-argument error with a formatted message
func NewInvalidArgumentError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidArgument, format, args...)
}

// NewConflictError creates a conflict error with a formatted message
func NewConflictError(format string, args ...interface{}) error {
	return Wrapf(ErrConflict, format, args...)
}
