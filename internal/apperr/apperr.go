// Package apperr defines the errors services return to handlers. Each error
// carries a Code that maps to one HTTP status; the message is safe to show
// to the client, the wrapped error is only logged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	Internal Code = iota
	Invalid
	NotFound
	Unauthenticated
	Conflict
)

func (c Code) String() string {
	switch c {
	case Invalid:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Unauthenticated:
		return "unauthenticated"
	case Conflict:
		return "already_exists"
	default:
		return "internal"
	}
}

func (c Code) HTTPStatus() int {
	switch c {
	case Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Code  Code
	Field string // offending parameter, empty when not field-specific
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidField reports a malformed or out-of-enum value for field.
func InvalidField(field, msg string) *Error {
	return &Error{Code: Invalid, Field: field, Msg: msg}
}

// NotFoundf collapses "does not exist" and "not yours" into one outcome.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: NotFound, Msg: fmt.Sprintf(format, args...)}
}

func New(code Code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
