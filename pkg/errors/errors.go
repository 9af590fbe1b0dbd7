// Package errors provides structured error types for the blockfit editor.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, desktop UI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly messages suitable for the editor status line
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NO_*: An operation needs state the editor does not have yet
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoSelection, "select a block first")
//	if errors.Is(err, errors.ErrCodeNoSelection) {
//	    // Surface in the status line
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeFailed, origErr, "decode %s", path)
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
	ErrCodeInvalidLength Code = "INVALID_LENGTH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidScript Code = "INVALID_SCRIPT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Editor state errors
	ErrCodeNoSelection   Code = "NO_SELECTION"
	ErrCodeNoBackground  Code = "NO_BACKGROUND"
	ErrCodeGestureActive Code = "GESTURE_ACTIVE"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeDecodeFailed Code = "DECODE_FAILED"

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

// IsUserError reports whether err is a recoverable user-input error: the
// operation was refused and no state changed.
func IsUserError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLength, ErrCodeNoSelection,
		ErrCodeNoBackground, ErrCodeGestureActive:
		return true
	}
	return false
}
