package clipboard

import "errors"

var (
	// ErrUnsupported is returned when the platform has no usable clipboard
	// for the requested content.
	ErrUnsupported = errors.New("clipboard: unsupported on this platform")
	// ErrWriteFailed wraps a failed clipboard write.
	ErrWriteFailed = errors.New("clipboard: write failed")
	// ErrReadFailed wraps a failed clipboard read.
	ErrReadFailed = errors.New("clipboard: read failed")
)
