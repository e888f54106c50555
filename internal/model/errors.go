package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies service-level failures.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindAuth          ErrorKind = "auth"
	KindAuthorization ErrorKind = "authorization"
	KindPlanLimit     ErrorKind = "plan_limit"
	KindNotFound      ErrorKind = "not_found"
)

// Error is a recoverable service error carrying enough context to render a message.
type Error struct {
	Kind    ErrorKind
	Message string
	// Field names the offending input for validation errors.
	Field string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrPlanLimit) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}
	ErrAuth             = &Error{Kind: KindAuth, Message: "not authenticated"}
	ErrAuthorization    = &Error{Kind: KindAuthorization, Message: "not authorized"}
	ErrPlanLimit        = &Error{Kind: KindPlanLimit, Message: "plan limit reached"}
	ErrResourceNotFound = &Error{Kind: KindNotFound, Message: "not found"}
)

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewPlanLimitError(message string) *Error {
	return &Error{Kind: KindPlanLimit, Message: message}
}

func NewNotFoundError(resource string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

// ErrNoSession is returned by mutating operations when no user is signed in.
var ErrNoSession = NewAuthError("no active session")
