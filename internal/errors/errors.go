// Package errors defines stable error codes and remediation hints for sift.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigMissing indicates no sift.toml was found; the engine stays disabled
	ConfigMissing ErrorCode = "CONFIG_MISSING"
	// BaseUnresolvable indicates the base ref could not be resolved and
	// skipping was explicitly requested
	BaseUnresolvable ErrorCode = "BASE_UNRESOLVABLE"
	// ResolveFailed indicates change resolution failed for another reason
	ResolveFailed ErrorCode = "RESOLVE_FAILED"
	// OracleFailure indicates the impact oracle could not answer a query
	OracleFailure ErrorCode = "ORACLE_FAILURE"
	// CacheUnavailable indicates the duration ledger store could not be used
	CacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// RunnerFailed indicates the test command could not be started
	RunnerFailed ErrorCode = "RUNNER_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests editing sift.toml
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// SiftError represents a sift error with code, message, and suggestions
type SiftError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new SiftError
func New(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *SiftError {
	return &SiftError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *SiftError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SiftError) Unwrap() error {
	return e.cause
}

// NewBaseUnresolvable builds the fatal configuration error emitted when
// skipping was explicitly requested but the base ref cannot be diffed.
// The message must contain the literal base name and an actionable fix.
func NewBaseUnresolvable(base string, cause error) *SiftError {
	return New(
		BaseUnresolvable,
		fmt.Sprintf("could not determine changed files (base=%q); the base ref may not exist in this checkout", base),
		cause,
		[]FixAction{
			{
				Type:        RunCommand,
				Command:     fmt.Sprintf("git fetch origin %s:%s", base, base),
				Safe:        true,
				Description: "Fetch the base ref (shallow CI checkouts often lack it)",
			},
		},
	)
}

// CodeOf extracts the ErrorCode from err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var se *SiftError
	if errors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// IsUsage reports whether err is a fatal usage error that should abort the
// run before any tests collect.
func IsUsage(err error) bool {
	return CodeOf(err) == BaseUnresolvable
}
