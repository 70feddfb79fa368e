package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeRetrievalError     = "RETRIEVAL_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// InvalidInput marks a caller fault: malformed or missing mandatory fields.
// Surfaced as a user-correctable message, never retried.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// InsufficientData marks the case where no estimate of any kind can be
// produced. Partial estimates never raise this; they degrade instead.
func InsufficientData(message string) *AppError {
	return New(CodeInsufficientData, message)
}

// RetrievalError marks the historical corpus as unavailable. Callers own
// retry policy; this core only classifies.
func RetrievalError(cause error) *AppError {
	return &AppError{
		Code:    CodeRetrievalError,
		Message: "historical corpus unavailable",
		Cause:   cause,
	}
}

// InvariantViolation marks an internal consistency failure. Always fatal,
// logged, never shown raw to an end user.
func InvariantViolation(message string) *AppError {
	return New(CodeInvariantViolation, message)
}

func InvariantViolationf(format string, args ...interface{}) *AppError {
	return New(CodeInvariantViolation, fmt.Sprintf(format, args...))
}
