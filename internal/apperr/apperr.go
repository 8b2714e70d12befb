// Package apperr defines the error taxonomy shared by the store, the services and the
// HTTP layer.
//
// Services return *Error values; handlers translate them with Code.HTTPStatus:
//
//	if errors.Is(err, apperr.ErrNotFound) {
//	    ...
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeValidation         Code = "VALIDATION"
	CodeInternal           Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code that represents c.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated, CodeInvalidToken, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded application error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// Entity names the record kind for NotFound and Conflict errors ("book", "author", ...).
	Entity  string `json:"-"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.cause = err
	return &cp
}

// Sentinels for errors.Is.
var (
	ErrUnauthenticated    = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Message: "invalid token"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// InvalidToken reports a bearer token that failed signature, algorithm or expiry checks.
func InvalidToken(cause error) *Error {
	return &Error{Code: CodeInvalidToken, Message: "invalid token", cause: cause}
}

func InvalidCredentials() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: ErrInvalidCredentials.Message}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// NotFound reports a missing record; entity is the record kind, e.g. "author".
func NotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Message: entity + " not found", Entity: entity}
}

func Conflict(entity, msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, Entity: entity}
}

// Validation carries field-level messages keyed by the JSON field name.
func Validation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Details: fields}
}

// Internal wraps an unexpected store or runtime failure.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}

// From returns err as an *Error, wrapping anything uncoded as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// CodeOf returns the Code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Fields returns the field-level messages of a validation error, or nil.
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		if f, ok := e.Details.(map[string]string); ok {
			return f
		}
	}
	return nil
}
