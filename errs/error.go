package errs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Application error codes. Every error that is meant to reach a client carries
// one of these codes, which ReturnError translates into an http status code.
const (
	EINVALID      = "invalid"
	EUNAUTHORIZED = "unauthorized"
	EFORBIDDEN    = "forbidden"
	ENOTFOUND     = "not_found"
	EINTERNAL     = "internal"
)

// Error represents an application-specific error. Its Message is safe to be
// displayed to the client, unlike the message of any other error type.
type Error struct {
	// Machine-readable error code.
	Code string
	// Human-readable error message.
	Message string
}

// Error implements the error interface. Not used by the client.
func (e *Error) Error() string {
	return fmt.Sprintf("app error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	if len(args) == 0 {
		return &Error{Code: code, Message: format}
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode unwraps an application error and returns its code.
// A gorm.ErrRecordNotFound is treated as ENOTFOUND. Any other
// non-application error returns EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return ENOTFOUND
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error." so that
// no implementation details leak to the client.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Not found."
	}
	return "Internal error."
}
