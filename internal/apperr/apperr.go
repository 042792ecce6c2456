// Package apperr defines the stable error kinds the service layer
// returns and the HTTP layer switches on. Kinds, not messages, are the
// contract: handlers map a kind to a status code and pass the message
// through, while wrapped causes stay server-side.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	// Validation: a required field is missing or malformed. Not
	// retryable; the caller must fix the payload.
	Validation Kind = iota + 1
	// NotFound: a referenced entity is absent or soft-deleted.
	NotFound
	// Conflict: duplicate unique key, already approved, already
	// deleted.
	Conflict
	// StateConflict: the record's lifecycle state forbids the
	// mutation (e.g. editing an approved voucher).
	StateConflict
	// Internal: persistence or transport failure. The message shown
	// to callers stays generic; the cause is logged server-side.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case StateConflict:
		return "state_conflict"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Error is a kinded error with a caller-facing message and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that carries an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err, or Internal when err is not an
// apperr value.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message of err. Internal errors
// are masked with a generic message so storage details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return "Internal server error."
}
