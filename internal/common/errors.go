// Package common defines the error taxonomy and constants shared by the
// server and the client of authkeeper. Callers should use errors.Is to match
// the sentinel values and StatusCode to turn any error into an HTTP status.
package common

import (
	"errors"
	"net/http"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error kinds. Every *Error carries exactly one of them.
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorInternal     = errors.New("internal error")

	// Token errors returned by the issuer.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a typed rejection. Status is the HTTP status the transport must
// answer with, Message is safe to show to the client, Cause is kept for logs
// only.
type Error struct {
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(status int, kind error, msg string, cause error) *Error {
	return &Error{Status: status, Message: msg, Kind: kind, Cause: cause}
}

func BadRequest(msg string) *Error {
	return newError(http.StatusBadRequest, ErrorBadRequest, msg, nil)
}

func Unauthorized(msg string) *Error {
	return newError(http.StatusUnauthorized, ErrorUnauthorized, msg, nil)
}

// UnauthorizedCause is Unauthorized with the underlying verification error
// attached, so it still shows up in logs.
func UnauthorizedCause(msg string, cause error) *Error {
	return newError(http.StatusUnauthorized, ErrorUnauthorized, msg, cause)
}

func NotFound(msg string) *Error {
	return newError(http.StatusNotFound, ErrorNotFound, msg, nil)
}

func Conflict(msg string) *Error {
	return newError(http.StatusConflict, ErrorConflict, msg, nil)
}

func Internal(msg string, cause error) *Error {
	return newError(http.StatusInternalServerError, ErrorInternal, msg, cause)
}

// StatusCode returns the HTTP status for err. Untyped errors are 500.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message that may be shown to the client. Untyped
// errors never leak their text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
