package liststore

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers can branch programmatically
// instead of matching message text.
type Kind int

const (
	// KindValidation covers empty or over-length names, items, and search terms.
	KindValidation Kind = iota
	// KindNotFound covers unresolved list names and missing items on removal.
	KindNotFound
	// KindAlreadyExists covers case-insensitive list name collisions and
	// exact-duplicate items on single add.
	KindAlreadyExists
	// KindLimitExceeded covers the list-count and item-count caps.
	KindLimitExceeded
	// KindStorage covers failures of the durable write step. The in-memory
	// mutation has already been applied when this is returned; Sync retries
	// the persist.
	KindStorage
	// KindInternal covers unexpected failures recovered at the operation
	// boundary.
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is the tagged failure result of a store operation. Message carries
// the user-facing text; rendering it is all a presentation layer needs to do.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, set for KindStorage
}

// Error implements the error interface with the user-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a store error, or KindInternal for any other
// error value.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsStorageFailure reports whether err is a durable-write failure. These are
// the only failures where the in-memory state has outrun the stored state.
func IsStorageFailure(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStorage
}
