package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField reports an absent required key.
	ErrMissingField = errors.New("missing required field")
	// ErrNotNumeric reports a numeric field whose value cannot be coerced.
	ErrNotNumeric = errors.New("value is not an unsigned integer")
	// ErrDuplicateKey reports an object that repeats a key.
	ErrDuplicateKey = errors.New("duplicate key")
)

// DecodeError describes why a document could not be decoded. Path locates the
// offending value, e.g. page_data[2].frames.frame_data[0].frame_index.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("profile: decode: %v", e.Err)
	}
	return fmt.Sprintf("profile: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func decodeErr(path string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Path: path, Err: err}
}
