// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Crudkit.

It provides a rich error type that bridges the gap between low-level domain and
storage errors and the fixed HTTP error contract.

Architecture:

  - AppError: a machine-readable Code plus a client-safe Message.
  - Taxonomy: one constructor per error kind, each bound to a fixed HTTP status.
  - Mapping: the respond package turns any AppError into the error envelope.

Every error that leaves the service layer should be an [AppError] (or wrap one)
so that API responses stay consistent.
*/
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

// Machine-readable error codes emitted as "errorCode" in responses.
const (
	CodeValidation           = "ValidationError"
	CodeInvalidInput         = "InvalidInput"
	CodeResourceNotFound     = "ResourceNotFound"
	CodeUnauthorizedAccess   = "UnauthorizedAccess"
	CodeAuthenticationFailed = "AuthenticationFailed"
	CodeForbidden            = "Forbidden"
	CodeConflict             = "Conflict"
	CodeConcurrencyConflict  = "ConcurrencyConflict"
	CodeDatabase             = "DatabaseError"
	CodeRateLimitExceeded    = "RateLimitExceeded"
	CodeServiceUnavailable   = "ServiceUnavailable"
	CodeTimeout              = "Timeout"
	CodeConfiguration        = "Configuration"
	CodeUnexpected           = "UnexpectedError"
)

// AppError is the canonical error type for the Crudkit API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "ResourceNotFound").
	Code string `json:"errorCode"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"errorMessage"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Resource names the object being validated (e.g. "User").
	Resource string `json:"resource,omitempty"`
	// Field is the JSON property that failed validation.
	Field string `json:"property"`
	// Code is a short rule identifier (e.g. "Required", "MinLength").
	Code string `json:"code,omitempty"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches an internal cause and returns the same error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeResourceNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError] for requests without an identity.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorizedAccess,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// AuthenticationFailed creates a 401 [AppError] for rejected credentials.
func AuthenticationFailed(msg string) *AppError {
	if msg == "" {
		msg = "Invalid login credentials"
	}
	return &AppError{
		Code:       CodeAuthenticationFailed,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError] for insufficient permissions.
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// Concurrency creates a 409 [AppError] for row-version mismatches.
func Concurrency(cause error) *AppError {
	return &AppError{
		Code:       CodeConcurrencyConflict,
		Message:    "The record was modified by another request. Reload it and try again.",
		HTTPStatus: http.StatusConflict,
		Cause:      cause,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidInput creates a 400 [AppError] for malformed requests.
func InvalidInput(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Timeout creates a 408 [AppError].
func Timeout(msg string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    msg,
		HTTPStatus: http.StatusRequestTimeout,
	}
}

// FromContext returns a Timeout error when err comes from an expired or
// cancelled context, nil otherwise.
func FromContext(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout("The request took too long to complete").WithCause(err)
	}
	return nil
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimitExceeded,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Database creates a 500 [AppError] wrapping a persistence failure.
func Database(cause error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "A database error occurred. Please try again or contact the administrator.",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Configuration creates a 500 [AppError] for missing or invalid settings.
func Configuration(cause error) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    "The service is misconfigured. Please contact the administrator.",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeUnexpected,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
