package errs

import (
	"errors"
	"fmt"
)

// Application error codes. Every error that leaves the crud layer carries one of these,
// so that the http layer can map it to a status code without knowing where it came from.
const (
	// EUNAUTHENTICATED means the request's credential could not be resolved to a user.
	EUNAUTHENTICATED = "unauthenticated"
	// EUNAUTHORIZED means the resolved user may not act on the targeted user's resources.
	EUNAUTHORIZED = "unauthorized"
	ENOTFOUND     = "not_found"
	ECONFLICT     = "conflict"
	EINVALID      = "invalid"
	// EMETHOD means the route exists, but not for the request's method.
	EMETHOD = "method_not_allowed"
	// EUNAVAILABLE means the store failed for reasons unrelated to the data.
	EUNAVAILABLE = "unavailable"
	EINTERNAL    = "internal"
)

// Error is the application's error type. Code is one of the constants above,
// Message is safe to show to the client, Err is the underlying cause (if any)
// and is never shown to the client.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface. It is meant for logs, not for clients.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code and a client-safe message to an underlying error.
func Wrap(code string, err error, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
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
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

var (
	IdInvalid         = Errorf(EINVALID, "The ID is invalid.")
	RememberTooShort  = Errorf(EINTERNAL, "The remember token must be at least 32 bytes.")
	RememberHashEmpty = Errorf(EINTERNAL, "The remember token hash is required.")
)
