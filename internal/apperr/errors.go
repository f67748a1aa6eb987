package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error and fixes its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindRequiredFields
	KindAlreadyExists
	KindNotFound
	KindInvalidReference
	KindInvalidInput
	KindUnauthorized
)

func (k Kind) Status() int {
	switch k {
	case KindRequiredFields, KindAlreadyExists, KindInvalidReference, KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by handlers and the data layer for every expected failure.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

// RequiredFields reports missing or blank required fields.
func RequiredFields(fields ...string) *Error {
	return &Error{
		Kind:    KindRequiredFields,
		Message: "Required fields missing: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// AlreadyExists reports a natural-key collision with a non-deleted row.
func AlreadyExists(entity, field string, value interface{}) *Error {
	return &Error{
		Kind:    KindAlreadyExists,
		Message: fmt.Sprintf("%s with %s '%v' already exists", entity, field, value),
		Fields:  []string{field},
	}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Deleted is the 404 returned when updating a soft-deleted row.
func Deleted(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " has been deleted"}
}

// InvalidReference reports a foreign key that points at a missing or deleted parent.
func InvalidReference(field string, id interface{}) *Error {
	return &Error{
		Kind:    KindInvalidReference,
		Message: fmt.Sprintf("Invalid %s: %v does not exist", field, id),
		Fields:  []string{field},
	}
}

func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err. Anything else is treated as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
