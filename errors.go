package relay

import (
	"errors"
	"fmt"
)

// Kind classifies an error returned by the engine so that transports (such
// as package api) can map it to a distinct status without string matching.
type Kind int

const (
	// KindInternal indicates an invariant was violated after a read — a
	// bug, not a caller mistake. It is the zero value so that a zero Error
	// never silently masquerades as something more specific.
	KindInternal Kind = iota

	// KindValidation indicates the caller's input violated a declared
	// constraint (e.g. empty type, priority out of range).
	KindValidation

	// KindNotFound indicates no job exists with the given id.
	KindNotFound

	// KindConflict indicates a precondition on status, lease ownership or
	// readiness failed. The caller may re-read state and retry.
	KindConflict

	// KindStorageUnavailable indicates a transient storage failure. The
	// caller may retry.
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Error is the error type returned by every Engine operation. Callers
// should use errors.Is against the sentinel Err* values below, or inspect
// Kind directly via errors.As, rather than matching on message text.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, allowing
// errors.Is(err, relay.ErrConflict) style checks against the sentinels
// below without comparing messages.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

var (
	// ErrValidation is a bare sentinel for errors.Is comparisons against
	// KindValidation errors.
	ErrValidation = &Error{Kind: KindValidation, Message: "validation"}

	// ErrNotFound is a bare sentinel for errors.Is comparisons against
	// KindNotFound errors.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}

	// ErrConflict is a bare sentinel for errors.Is comparisons against
	// KindConflict errors.
	ErrConflict = &Error{Kind: KindConflict, Message: "conflict"}

	// ErrStorageUnavailable is a bare sentinel for errors.Is comparisons
	// against KindStorageUnavailable errors.
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable, Message: "storage unavailable"}

	// ErrInternal is a bare sentinel for errors.Is comparisons against
	// KindInternal errors.
	ErrInternal = &Error{Kind: KindInternal, Message: "internal"}
)
