// Package errors provides structured error types for clockbody.
//
// Every error raised by the layout parser, the configuration loader, and the
// OpenSCAD renderer carries a machine-readable [Code] so the CLI can decide
// how to report it:
//
//   - SENTINEL_*: the layout block could not be located
//   - INVALID_*: input or configuration validation failures
//   - RENDER*: the external renderer failed or could not be started
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSentinelNotFound, "missing %s line", "<END>")
//	if errors.Is(err, errors.ErrCodeSentinelNotFound) {
//	    // Handle missing sentinel
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderFailed, exitErr, "openscad exited with status %d", code)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout block errors
	ErrCodeSentinelNotFound Code = "SENTINEL_NOT_FOUND"
	ErrCodeSentinelOrder    Code = "SENTINEL_ORDER"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Renderer errors
	ErrCodeRenderFailed     Code = "RENDER_FAILED"
	ErrCodeRendererNotFound Code = "RENDERER_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// RenderError carries the details of a failed renderer run.
// It is the Cause of an ErrCodeRenderFailed *Error.
type RenderError struct {
	ExitCode int    // Process exit status (-1 if the process did not exit normally)
	Stderr   string // Tail of the renderer's standard error
	Err      error  // Underlying exec error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("exit status %d", e.ExitCode)
}

// Unwrap returns the underlying exec error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Code returns the error code for this error type.
func (e *RenderError) Code() Code {
	return ErrCodeRenderFailed
}
