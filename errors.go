package compressedio

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when a stream doesn't start with any of the
// recognized magic bytes and falling back to raw data is not allowed, or when
// a format name or value is not recognized.
var ErrUnknownFormat = errors.New("unknown compression format")

// IOError records an error from the underlying source or sink, and the
// operation that caused it. Errors from the gzip and lz4 decoders are also
// reported as IOError since they surface through Read.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("compressedio: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}

// ErrClosed is returned when using a Reader or Writer which has been closed,
// finished or unwrapped.
var ErrClosed = errors.New("compressedio: use of closed stream")
