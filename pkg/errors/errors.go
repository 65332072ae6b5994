// Package errors provides structured errors with stable codes, so the CLI
// can map failures to exit codes and tests can assert on categories instead
// of message text.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrArgParse     ErrorCode = "ARG_PARSE"

	// Configuration errors
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrConfigValid    ErrorCode = "CONFIG_INVALID"

	// Build errors
	ErrPatternInvalid ErrorCode = "PATTERN_INVALID"
	ErrOutDirPrepare  ErrorCode = "OUT_DIR_PREPARE"
	ErrCopyFailed     ErrorCode = "COPY_FAILED"
)

// StagehandError represents a structured error with code and details
type StagehandError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error

	// Silent suppresses the generic error line in main; used when the
	// failure was already reported in full (e.g. a validation summary).
	Silent bool
}

// Error implements the error interface
func (e *StagehandError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StagehandError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *StagehandError) Is(target error) bool {
	var targetErr *StagehandError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StagehandError with the given code and message
func New(code ErrorCode, message string) *StagehandError {
	return &StagehandError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StagehandError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StagehandError {
	return &StagehandError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a StagehandError
func Wrap(err error, code ErrorCode, message string) *StagehandError {
	if err == nil {
		return nil
	}
	return &StagehandError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StagehandError {
	if err == nil {
		return nil
	}
	return &StagehandError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *StagehandError) WithDetail(key string, value interface{}) *StagehandError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsSilent marks the error as already reported.
func (e *StagehandError) AsSilent() *StagehandError {
	e.Silent = true
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var shErr *StagehandError
	if errors.As(err, &shErr) {
		return shErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a
// StagehandError
func GetErrorCode(err error) ErrorCode {
	var shErr *StagehandError
	if errors.As(err, &shErr) {
		return shErr.Code
	}
	return ErrUnknown
}

// IsSilent reports whether the error was already reported to the user.
func IsSilent(err error) bool {
	var shErr *StagehandError
	if errors.As(err, &shErr) {
		return shErr.Silent
	}
	return false
}

// ExitCode maps an error to the process exit code: 2 for argument-parsing
// errors, 1 for everything else, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsErrorCode(err, ErrArgParse) {
		return 2
	}
	return 1
}
