package errors

import (
	"fmt"
)

// AppError is a coded application error for the binaries and adapters. The
// scoring domain keeps its own sentinel errors; this type covers the
// operational surface around it (configuration, storage, transport).
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

// Wrap wraps an error with additional context, preserving an existing code
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

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Error codes used by the binaries and adapters
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeLedgerError   = "LEDGER_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
)

// ConfigInvalid marks a bad environment or file configuration
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// LedgerError marks a result-ledger storage failure
func LedgerError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeLedgerError,
		Message: message,
		Cause:   cause,
	}
}

// NotFound marks a missing stored resource
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}
