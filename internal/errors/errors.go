// Package errors provides centralized error definitions and error handling
// utilities for planvet. It defines domain-specific errors, semantic error
// types, error constructors with context wrapping, and classification
// helpers.
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - BackendError: errors related to invoking an analysis backend
//   - ConfigError: errors related to configuration and initialization
//   - PlanError: errors related to loading or validating plan input
//
// Semantic sentinel errors represent common error conditions, e.g.
// ErrNoBackendAvailable or ErrNotConfirmed.
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrNoBackendAvailable) { ... }
//
//	var backendErr *errors.BackendError
//	if errors.As(err, &backendErr) { ... }
//
//	if errors.IsConfiguration(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Backend-related sentinel errors
var (
	// ErrNoBackendAvailable indicates that neither the primary nor the
	// secondary backend can serve requests. This is fatal: no request can
	// ever succeed, so initialization refuses to proceed.
	ErrNoBackendAvailable = New("no analysis backend available")
	// ErrPrimaryNotInstalled indicates the primary backend CLI is not on PATH.
	ErrPrimaryNotInstalled = New("primary backend is not installed")
	// ErrSecondaryNotConfigured indicates no API credential is present for
	// the secondary backend.
	ErrSecondaryNotConfigured = New("secondary backend is not configured")
	// ErrBackendTimeout indicates a backend call exceeded its deadline.
	ErrBackendTimeout = New("backend invocation timed out")
)

// Plan- and workflow-related sentinel errors
var (
	// ErrPlanEmpty indicates the submitted plan text was empty.
	ErrPlanEmpty = New("plan text is empty")
	// ErrPlanNotFound indicates the plan file does not exist.
	ErrPlanNotFound = New("plan file not found")
	// ErrNotConfirmed indicates the user declined to apply proposed changes.
	ErrNotConfirmed = New("changes not confirmed")
)

// BackendError represents an error from invoking an analysis backend.
// It records which backend was attempted so user-visible failures can
// always name it.
type BackendError struct {
	// Backend names the backend that was attempted ("primary"/"secondary").
	Backend string
	// Message describes what failed.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError creates a BackendError for the named backend.
func NewBackendError(backend, message string, err error) *BackendError {
	return &BackendError{Backend: backend, Message: message, Err: err}
}

// ConfigError represents an unrecoverable configuration problem,
// surfaced at initialization time and never retried.
type ConfigError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration: %s", e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError with the given message.
func NewConfigError(message string, err error) *ConfigError {
	return &ConfigError{Message: message, Err: err}
}

// PlanError represents a problem with the plan input itself.
type PlanError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("plan: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("plan: %s", msg)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *PlanError) Unwrap() error {
	return e.Err
}

// NewPlanError creates a PlanError for the given path.
func NewPlanError(path, message string, err error) *PlanError {
	return &PlanError{Path: path, Message: message, Err: err}
}

// IsConfiguration returns true if the error is an unrecoverable
// configuration error that should abort startup rather than be retried.
func IsConfiguration(err error) bool {
	if Is(err, ErrNoBackendAvailable) {
		return true
	}
	var configErr *ConfigError
	return As(err, &configErr)
}

// IsBackend returns true if the error originated in a backend invocation.
func IsBackend(err error) bool {
	var backendErr *BackendError
	return As(err, &backendErr)
}

// IsUserFacing returns true if the error is safe and useful to show to
// users directly (as opposed to internal errors that should be logged).
func IsUserFacing(err error) bool {
	switch {
	case Is(err, ErrPlanEmpty),
		Is(err, ErrPlanNotFound),
		Is(err, ErrNotConfirmed),
		Is(err, ErrNoBackendAvailable),
		Is(err, ErrPrimaryNotInstalled),
		Is(err, ErrSecondaryNotConfigured):
		return true
	}
	var planErr *PlanError
	if As(err, &planErr) {
		return true
	}
	var configErr *ConfigError
	return As(err, &configErr)
}
