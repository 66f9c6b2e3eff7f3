package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store failures.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not found"
	KindRead        ErrorKind = "read"
	KindWrite       ErrorKind = "write"
	KindInvalid     ErrorKind = "invalid content"
	KindUnsupported ErrorKind = "unsupported"
)

var (
	// ErrNotFound matches any Error of kind KindNotFound.
	ErrNotFound = errors.New("store: document not found")
	// ErrInvalid matches any Error of kind KindInvalid.
	ErrInvalid = errors.New("store: invalid document")
	// ErrUnsupported matches any Error of kind KindUnsupported.
	ErrUnsupported = errors.New("store: operation not supported")
)

// Error is returned by every store operation that fails.
type Error struct {
	Op       string
	Location string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("store: %s %s: %s", e.Op, e.Location, e.Kind)
	}
	return fmt.Sprintf("store: %s %s: %s: %v", e.Op, e.Location, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and friends match on kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalid:
		return e.Kind == KindInvalid
	case ErrUnsupported:
		return e.Kind == KindUnsupported
	default:
		return false
	}
}

// NewError builds an Error.
func NewError(op, location string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Location: location, Kind: kind, Err: err}
}

// NotFound builds a KindNotFound error for op at location.
func NotFound(op, location string, err error) *Error {
	return NewError(op, location, KindNotFound, err)
}

// Invalid builds a KindInvalid error, typically wrapping a profile.DecodeError.
func Invalid(op, location string, err error) *Error {
	return NewError(op, location, KindInvalid, err)
}

// Unsupported builds a KindUnsupported error.
func Unsupported(op, location string, reason string) *Error {
	return NewError(op, location, KindUnsupported, errors.New(reason))
}
