// Package errors provides structured error types for prefixtower.
//
// Every precondition failure in the synthesis core carries a machine-readable
// [Code] so that callers (CLI, HTTP API, pipeline) can decide whether to abort
// construction or retry with a different rank or operation.
//
// # Error Codes
//
//   - STRUCTURAL: rotation, shift, block or edge precondition violated
//   - PORT_MISMATCH: no complementary port, or width disagreement
//   - RANK_OUT_OF_RANGE: rank outside [0, catalan(n)), or illegal mirror pivot
//   - CATALOG: unknown module type or malformed catalog
//   - INVALID_*: user input validation failures
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructural, "node %d is not a right child", id)
//	if errors.Is(err, errors.ErrCodeStructural) {
//	    // try the opposite rotation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Core synthesis errors
	ErrCodeStructural     Code = "STRUCTURAL"
	ErrCodePortMismatch   Code = "PORT_MISMATCH"
	ErrCodeRankOutOfRange Code = "RANK_OUT_OF_RANGE"
	ErrCodeCatalog        Code = "CATALOG"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidRecipe   Code = "INVALID_RECIPE"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Structural is shorthand for New(ErrCodeStructural, ...).
func Structural(format string, args ...any) *Error {
	return New(ErrCodeStructural, format, args...)
}

// PortMismatch is shorthand for New(ErrCodePortMismatch, ...).
func PortMismatch(format string, args ...any) *Error {
	return New(ErrCodePortMismatch, format, args...)
}

// RankOutOfRange is shorthand for New(ErrCodeRankOutOfRange, ...).
func RankOutOfRange(format string, args ...any) *Error {
	return New(ErrCodeRankOutOfRange, format, args...)
}

// Catalog is shorthand for New(ErrCodeCatalog, ...).
func Catalog(format string, args ...any) *Error {
	return New(ErrCodeCatalog, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
