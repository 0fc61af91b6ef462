// Package apperr defines the error taxonomy surfaced to HTTP callers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an Error for status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindPrivilege
	KindToken
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindPrivilege:
		return "privilege"
	case KindToken:
		return "token"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a failure that is safe to report to the caller.
// Message is user facing; Err, when set, is only for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Auth reports a bad credential.
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

// Privilege reports a valid identity without the required role.
func Privilege(msg string) *Error { return &Error{Kind: KindPrivilege, Message: msg} }

// Token reports a missing, expired or tampered token.
func Token(msg string) *Error { return &Error{Kind: KindToken, Message: msg} }

// NotFound reports a missing resource.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Internal wraps an unexpected failure behind a generic message.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindPrivilege, KindToken:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
