package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Invocation errors
	ErrUsage      ErrorCode = "USAGE"
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Plugin resolution errors
	ErrNoHandler      ErrorCode = "NO_HANDLER"
	ErrNoRun          ErrorCode = "NO_RUN"
	ErrLoadFailure    ErrorCode = "LOAD_FAILURE"
	ErrRunFailure     ErrorCode = "RUN_FAILURE"
	ErrMethodNotFound ErrorCode = "METHOD_NOT_FOUND"

	// Table errors
	ErrAccessor ErrorCode = "ACCESSOR"

	// Persistence errors
	ErrSave      ErrorCode = "SAVE"
	ErrFileWrite ErrorCode = "FILE_WRITE"
	ErrFetch     ErrorCode = "FETCH"
	ErrIndex     ErrorCode = "INDEX"
)

// GatherError represents a structured error with code and details
type GatherError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GatherError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GatherError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GatherError) Is(target error) bool {
	var targetErr *GatherError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GatherError with the given code and message
func New(code ErrorCode, message string) *GatherError {
	return &GatherError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GatherError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GatherError {
	return &GatherError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GatherError
func Wrap(err error, code ErrorCode, message string) *GatherError {
	if err == nil {
		return nil
	}
	return &GatherError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GatherError {
	if err == nil {
		return nil
	}
	return &GatherError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GatherError) WithDetail(key string, value interface{}) *GatherError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var gatherErr *GatherError
	if errors.As(err, &gatherErr) {
		return gatherErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GatherError
func GetErrorCode(err error) ErrorCode {
	var gatherErr *GatherError
	if errors.As(err, &gatherErr) {
		return gatherErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GatherError
func GetErrorDetails(err error) map[string]interface{} {
	var gatherErr *GatherError
	if errors.As(err, &gatherErr) {
		return gatherErr.Details
	}
	return nil
}

// Process exit codes reported by the command line driver.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitNoRun   = 3
	ExitSave    = 4
)

// ExitCode maps an error to the process exit status. A nil error maps to ExitOK
// and anything unclassified to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrUsage, ErrInvalidInput, ErrConfigLoad:
		return ExitUsage
	case ErrNoHandler, ErrNoRun, ErrLoadFailure, ErrRunFailure, ErrMethodNotFound:
		return ExitNoRun
	case ErrSave, ErrFileWrite, ErrFetch, ErrIndex:
		return ExitSave
	default:
		return ExitFailure
	}
}
