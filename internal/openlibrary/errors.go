package openlibrary

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound    = errors.New("openlibrary: not found")
	ErrUnavailable = errors.New("openlibrary: catalog unavailable")
	ErrMalformed   = errors.New("openlibrary: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // "work", "author", "trending", "search"
	Key string // If applicable
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("openlibrary %s [%s]: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("openlibrary %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// kindError joins a sentinel with the concrete cause so errors.Is matches the
// sentinel while the message keeps the detail.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.kind, e.cause)
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func wrapError(op, key string, kind, cause error) error {
	return &Error{
		Op:  op,
		Key: key,
		Err: &kindError{kind: kind, cause: cause},
	}
}
