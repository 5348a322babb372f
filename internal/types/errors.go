package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for graphd errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Relational store error codes
const (
	DB_OPEN_FAILED      ErrorCode = "DB_OPEN_FAILED"
	DB_MIGRATION_FAILED ErrorCode = "DB_MIGRATION_FAILED"
	DB_QUERY_FAILED     ErrorCode = "DB_QUERY_FAILED"
)

// Synchronizer error codes
const (
	SYNC_HANDLER_FAILED ErrorCode = "SYNC_HANDLER_FAILED"
	SYNC_RESYNC_FAILED  ErrorCode = "SYNC_RESYNC_FAILED"
)

// Analytics error codes
const (
	ANALYTICS_RUN_FAILED   ErrorCode = "ANALYTICS_RUN_FAILED"
	ANALYTICS_PROBE_FAILED ErrorCode = "ANALYTICS_PROBE_FAILED"
)

// Error is a structured error with an error code, message, and optional cause.
// It supports error wrapping and carries a retryability hint so callers can
// distinguish transient infrastructure failures from permanent ones.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if a cause exists.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so errors.Is works across wrapped instances.
func (e *Error) Is(target error) bool {
	var coded *Error
	if errors.As(target, &coded) {
		return e.Code == coded.Code
	}
	return false
}

// NewError creates a new non-retryable Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewRetryableError creates a new retryable Error with the given code and message.
// Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: true}
}

// WrapError creates a non-retryable Error wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WrapRetryableError creates a retryable Error wrapping an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Retryable: true, Cause: cause}
}

// IsRetryable reports whether err (or any error in its chain) is a retryable Error.
func IsRetryable(err error) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Retryable
	}
	return false
}
