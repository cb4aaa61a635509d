// Package errors provides structured error types for floorplan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, shell and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror how the transform pipeline reacts to a failure:
//   - STRUCTURE_NOT_FOUND: an optional stage is skipped, the run continues
//   - MALFORMED_SELECTOR: one element is skipped, the run continues
//   - CHANNEL_CLOSED: the interactive rename session ended early, the run aborts
//   - INVALID_*: input or configuration rejected before any work happens
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructureNotFound, "no element with id=%q", id)
//	if errors.Is(err, errors.ErrCodeStructureNotFound) {
//	    // skip the options stage
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeChannelClosed, io.EOF, "rename prompt %d of %d", i, n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Structural errors raised while scanning markup
	ErrCodeStructureNotFound Code = "STRUCTURE_NOT_FOUND"
	ErrCodeMalformedSelector Code = "MALFORMED_SELECTOR"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Interactive session errors
	ErrCodeChannelClosed Code = "CHANNEL_CLOSED"

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

// Recoverable reports whether a pipeline may continue after err, degrading to
// "skip this optional stage" or "skip this element".
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeStructureNotFound, ErrCodeMalformedSelector:
		return true
	}
	return false
}
