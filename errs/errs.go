// Package errs defines the closed error taxonomy shared across the
// orchestration core, so every component fails in a way its caller can
// switch on without parsing strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of failure categories the core recognizes.
type Kind string

const (
	InvalidInput        Kind = "invalid_input"
	Unauthenticated      Kind = "unauthenticated"
	Forbidden            Kind = "forbidden"
	NotFound             Kind = "not_found"
	Unavailable          Kind = "unavailable"
	Timeout              Kind = "timeout"
	Cancelled            Kind = "cancelled"
	Transport            Kind = "transport"
	BadStructuredOutput  Kind = "bad_structured_output"
	UnknownPrompt        Kind = "unknown_prompt"
	InternalInvariant    Kind = "internal_invariant"
)

// Error wraps an underlying cause with a Kind so callers can branch on
// category while %w-wrapping still works with errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, errs.New(errs.Timeout, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to InternalInvariant when
// err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if err == nil {
		return ""
	}
	return InternalInvariant
}

// Is is a convenience wrapper so call sites can write errs.Is(err, errs.Timeout).
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
