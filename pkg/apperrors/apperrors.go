// Package apperrors defines the error taxonomy shared by all core
// operations. Every expected failure is one of five kinds; handlers map
// kinds to HTTP status codes and callers may retry only Unavailable.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindUnknown covers unexpected internal failures.
	KindUnknown Kind = iota

	// KindValidation marks malformed input (empty text, missing field).
	KindValidation

	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound

	// KindForbidden marks an actor lacking rights over the target.
	KindForbidden

	// KindConflict marks an invariant violation, e.g. a duplicate
	// active friend request between the same pair.
	KindConflict

	// KindUnavailable marks an unreachable dependency (database,
	// broker). The only kind eligible for caller-side retry.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two taxonomy errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func Unavailable(err error, format string, args ...any) *Error {
	return Wrap(KindUnavailable, err, format, args...)
}

// KindOf extracts the taxonomy kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code handlers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
