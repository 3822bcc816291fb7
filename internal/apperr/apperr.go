// Package apperr defines the error kinds the service distinguishes at its
// boundaries. Storage and workflow code classify failures into one of these
// kinds; HTTP handlers map kinds to status codes without inspecting causes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure.
type Kind int

const (
	// KindUnknown is the zero value and maps to an internal error.
	KindUnknown Kind = iota

	// KindNotFound means the referenced entity does not exist.
	KindNotFound

	// KindInsufficientStock means an adjustment would drive stock negative.
	KindInsufficientStock

	// KindValidation means the request payload failed validation.
	KindValidation

	// KindForbidden means the actor is not allowed to perform the action.
	KindForbidden

	// KindPersistence means the storage layer failed.
	KindPersistence

	// KindConflict means the request contradicts current state
	// (duplicate email, deleting the last owner).
	KindConflict

	// KindUnauthorized means the request carries no valid credentials.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindValidation:
		return "validation_failure"
	case KindForbidden:
		return "forbidden"
	case KindPersistence:
		return "persistence_failure"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so errors.Is works against sentinel errors
// created with the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound builds a KindNotFound error for the named entity.
func NotFound(entity string, id any) *Error {
	return Newf(KindNotFound, "%s %v not found", entity, id)
}

// InsufficientStock builds a KindInsufficientStock error.
func InsufficientStock(materialID int64) *Error {
	return Newf(KindInsufficientStock, "material %d has insufficient stock", materialID)
}

// Validation builds a KindValidation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Persistence wraps a storage failure.
func Persistence(message string, err error) *Error {
	return Wrap(KindPersistence, message, err)
}

// KindOf extracts the kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
