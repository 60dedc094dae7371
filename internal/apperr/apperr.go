// Package apperr defines the error taxonomy used across services and
// repositories. Every failure a handler can see is one of these kinds, so
// the HTTP layer maps kind to status code in exactly one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindInvalidState
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindInvalidState:
		return "invalid_state"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Validation reports a malformed or incomplete request payload.
func Validation(format string, args ...interface{}) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// Authorization reports a role or ownership violation.
func Authorization(format string, args ...interface{}) error {
	return &Error{kind: KindAuthorization, msg: fmt.Sprintf(format, args...)}
}

// InvalidState reports an operation whose lifecycle precondition does not
// hold, including transitions lost to a concurrent writer.
func InvalidState(format string, args ...interface{}) error {
	return &Error{kind: KindInvalidState, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record.
func NotFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying database or object-store failure. The cause
// is preserved unmodified for logs; callers never retry here.
func Storage(err error, msg string) error {
	return &Error{kind: KindStorage, msg: msg, err: err}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
