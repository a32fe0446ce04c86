package services

import (
	"errors"
	"fmt"

	"freelance-backend/internal/database"
)

// Kind classifies a marketplace failure for the transport layer.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindIllegalTransition   Kind = "illegal_transition"
	KindInvalidReference    Kind = "invalid_reference"
	KindPermissionDenied    Kind = "permission_denied"
	KindConstraintViolation Kind = "constraint_violation"
	KindExternalService     Kind = "external_service_error"
)

// Error is a user-visible failure. Message is safe to show to the caller.
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

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewIllegalTransitionError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIllegalTransition, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidReferenceError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidReference, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionDeniedError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func NewConstraintViolationError(err error) *Error {
	return &Error{Kind: KindConstraintViolation, Message: "the change conflicts with existing data", Err: err}
}

func NewExternalServiceError(err error) *Error {
	return &Error{Kind: KindExternalService, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, if err carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// storeError maps store failures into the taxonomy. what names the entity
// that was looked up, e.g. "project".
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	if errors.Is(err, database.ErrNotFound) {
		return &Error{Kind: KindInvalidReference, Message: what + " not found", Err: err}
	}
	var ce *database.ConstraintError
	if errors.As(err, &ce) {
		return NewConstraintViolationError(err)
	}
	return err
}

// outcome is the metrics label for an operation result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind, ok := KindOf(err); ok {
		return string(kind)
	}
	return "error"
}
