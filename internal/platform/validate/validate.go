// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer, never in handlers or
// storage. It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
)

// Rule codes reported in [apperr.FieldError.Code].
const (
	CodeRequired  = "Required"
	CodeMinLength = "MinLength"
	CodeMaxLength = "MaxLength"
	CodeEmail     = "Email"
	CodeOneOf     = "OneOf"
	CodeMismatch  = "Mismatch"
	CodeDuplicate = "Duplicate"
	CodeInvalid   = "Invalid"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.InvalidInput("Invalid JSON payload")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	resource string
	errs     []apperr.FieldError
}

// For returns a Validator whose errors are attributed to resource.
func For(resource string) *Validator {
	return &Validator{resource: resource}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, CodeRequired, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, CodeMaxLength, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, CodeMinLength, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, CodeEmail, "Must be a valid email address")
	}
	return v
}

// Equal fails if value differs from expected.
func (v *Validator) Equal(field, value, expected, message string) *Validator {
	if value != expected {
		v.add(field, CodeMismatch, message)
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, CodeOneOf, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom code and message if the condition is true.
//
// # Example
//
//	v.Custom("username", validate.CodeDuplicate, taken, "Username is already in use")
func (v *Validator) Custom(field, code string, failed bool, message string) *Validator {
	if failed {
		v.add(field, code, message)
	}
	return v
}

// Err returns a [apperr.AppError] (ValidationError) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, code, message string) {
	v.errs = append(v.errs, apperr.FieldError{
		Resource: v.resource,
		Field:    field,
		Code:     code,
		Message:  message,
	})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Code:    CodeRequired,
		Message: message,
	})
}
