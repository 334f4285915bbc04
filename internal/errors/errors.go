// Package errors provides standardized domain errors with codes for the books API.
//
// Usage:
//
//	// In services - return typed errors
//	if book == nil {
//	    return errors.NotFoundf("book %s not found", isbn)
//	}
//
//	// Field-scoped validation accumulates before failing once
//	var fe errors.FieldErrors
//	fe.Add("isbn13", "The isbn13 field is required.")
//	if err := fe.Err(); err != nil {
//	    return err
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrConflict) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeUnsupportedMedia Code = "UNSUPPORTED_MEDIA"
	CodeTooLarge         Code = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// GetStatus lets huma treat domain errors as status errors.
func (e *Error) GetStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnsupportedMedia = &Error{Code: CodeUnsupportedMedia, Message: "unsupported media type"}
	ErrTooLarge         = &Error{Code: CodeTooLarge, Message: "payload too large"}
	ErrRateLimited      = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedMedia creates an unsupported media type error.
func UnsupportedMedia(msg string) *Error {
	return &Error{Code: CodeUnsupportedMedia, Message: msg}
}

// TooLarge creates a payload too large error.
func TooLarge(msg string) *Error {
	return &Error{Code: CodeTooLarge, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// FieldErrors maps a wire field name to the messages reported against it.
// The zero value is ready to use.
type FieldErrors map[string][]string

// Add records a message against a field.
func (fe *FieldErrors) Add(field, msg string) {
	if *fe == nil {
		*fe = make(FieldErrors)
	}
	(*fe)[field] = append((*fe)[field], msg)
}

// Addf records a formatted message against a field.
func (fe *FieldErrors) Addf(field, format string, args ...any) {
	fe.Add(field, fmt.Sprintf(format, args...))
}

// Merge copies every message of other into fe.
func (fe *FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, m := range msgs {
			fe.Add(field, m)
		}
	}
}

// Has reports whether a message was recorded for field.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err returns a validation error carrying the field map, or nil when empty.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return ValidationWithDetails("one or more validation errors occurred", map[string][]string(fe))
}
