// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the
Film Society backend.

It provides a rich error type that bridges the gap between low-level
domain/storage errors and the JSON envelope the frontend consumes.

Architecture:

  - AppError: a struct carrying an application errno, an HTTP status,
    and a user-friendly message.
  - Errno taxonomy: 0 success, 1 validation failure, 3 business rule
    violation; transport-level failures (400/401/403/404/500) reuse the
    HTTP status code as errno.
  - Mapping: explicit mapping from AppError to HTTP status codes.

Every error that leaves the service layer should be wrapped as an
[AppError] to ensure consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Application error codes carried in the `errno` field of every response.
const (
	ErrnoOK           = 0
	ErrnoValidation   = 1
	ErrnoBusinessRule = 3
	ErrnoBadRequest   = 400
	ErrnoUnauthorized = 401
	ErrnoForbidden    = 403
	ErrnoNotFound     = 404
	ErrnoInternal     = 500
)

// AppError is the canonical error type for the API.
//
// It carries the application errno, the HTTP response status, a
// client-safe message, and an optional slice of field-level validation
// errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients to avoid leaking internal implementation details.
type AppError struct {
	// Errno is the application error code (see the Errno constants).
	Errno int `json:"errno"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for errno-1 responses.
	Details []FieldError `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Application Errors (reported with HTTP 200, non-zero errno)

// Validation creates an errno-1 [AppError] with per-field details.
// All field messages are aggregated into one newline-joined message,
// matching the envelope the frontend expects.
func Validation(details ...FieldError) *AppError {
	messages := make([]string, 0, len(details))
	for _, d := range details {
		messages = append(messages, d.Message)
	}
	return &AppError{
		Errno:      ErrnoValidation,
		Message:    strings.Join(messages, "\n"),
		HTTPStatus: http.StatusOK,
		Details:    details,
	}
}

// ValidationMsg creates an errno-1 [AppError] with a single message.
func ValidationMsg(msg string) *AppError {
	return &AppError{
		Errno:      ErrnoValidation,
		Message:    msg,
		HTTPStatus: http.StatusOK,
	}
}

// BusinessRule creates an errno-3 [AppError] for a state-machine guard
// failure. The reason is shown to the member verbatim and the request
// is never retried automatically.
func BusinessRule(reason string) *AppError {
	return &AppError{
		Errno:      ErrnoBusinessRule,
		Message:    reason,
		HTTPStatus: http.StatusOK,
	}
}

// # Transport Errors (4xx/5xx)

// BadRequest creates a 400 [AppError] for an unparsable request body.
func BadRequest(msg string) *AppError {
	return &AppError{
		Errno:      ErrnoBadRequest,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Errno:      ErrnoUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Errno:      ErrnoForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Errno:      ErrnoNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side
// error. The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Errno:      ErrnoInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsBusinessRule reports whether err is an errno-3 rule violation.
func IsBusinessRule(err error) bool {
	ae := As(err)
	return ae != nil && ae.Errno == ErrnoBusinessRule
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Errno == ErrnoNotFound
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
