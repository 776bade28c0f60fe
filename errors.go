package hibid

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL    = "internal"    // unexpected failure
	EINVALID     = "invalid"     // input rejected before any network I/O
	ENOTFOUND    = "not_found"   // target entity absent from the source
	ENODATA      = "no_data"     // well-formed input, nothing matched
	EPARSE       = "parse"       // state document present but malformed
	EUNAVAILABLE = "unavailable" // network failure, timeout, or non-2xx
)

// Error represents an application-specific error. Errors carry a
// machine-readable code and a human-readable message.
type Error struct {
	// Code is one of the application error code constants.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hibid error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
