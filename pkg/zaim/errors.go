// Package zaim holds what the exporter knows about the Zaim site: credentials,
// page locations, form selectors and the error taxonomy of an export run.
package zaim

import (
	"errors"
	"fmt"
)

// Error codes for the failure classes of an export run
const (
	// ErrCodeConfig indicates missing credentials or an invalid run configuration
	ErrCodeConfig = "CONFIG"
	// ErrCodeElementTimeout indicates an expected page element never became visible
	ErrCodeElementTimeout = "ELEMENT_TIMEOUT"
	// ErrCodeDownloadTimeout indicates the exported file never appeared in staging
	ErrCodeDownloadTimeout = "DOWNLOAD_TIMEOUT"
	// ErrCodeBrowser indicates a navigation or element interaction failed
	ErrCodeBrowser = "BROWSER"
	// ErrCodeFilesystem indicates a directory could not be prepared or read
	ErrCodeFilesystem = "FILESYSTEM"
	// ErrCodeMove indicates the downloaded file could not be moved to its final name
	ErrCodeMove = "MOVE"
	// ErrCodeCanceled indicates the run was interrupted before it finished
	ErrCodeCanceled = "CANCELED"
)

// Error represents an export failure with the step it happened in.
type Error struct {
	Code    string // Error code identifying the failure class
	Step    string // Protocol step that failed, e.g. "login"
	Message string // Human readable error message
	Err     error  // Underlying error if any
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	if e.Step != "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s during %s: %v", e.Code, e.Message, e.Step, e.Err)
		}
		return fmt.Sprintf("[%s] %s during %s", e.Code, e.Message, e.Step)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given parameters.
func NewError(code, step, message string, err error) *Error {
	return &Error{
		Code:    code,
		Step:    step,
		Message: message,
		Err:     err,
	}
}

// IsError reports whether err wraps an *Error carrying the given code.
func IsError(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrorCode returns the code of the first *Error in err's chain, or "" if there is none.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
