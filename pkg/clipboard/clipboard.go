// Package clipboard adapts the system clipboard (github.com/atotto/clipboard)
// to the export actions.
//
// The backend is text-only. Image writes are refused with ErrUnsupported
// unless the System was created with WithImageAsDataURI, in which case the
// image is placed on the clipboard as a base64 data URI.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Package-level indirection allows tests to replace the platform calls.
var (
	writeAll    = clipboard.WriteAll
	readAll     = clipboard.ReadAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// System is the platform clipboard. Calls are serialized.
type System struct {
	mu             sync.Mutex
	imageAsDataURI bool
}

// Option configures System.
type Option func(*System)

// WithImageAsDataURI makes WriteImage place a PNG as a data URI string.
func WithImageAsDataURI() Option {
	return func(s *System) { s.imageAsDataURI = true }
}

// New returns the system clipboard.
func New(opts ...Option) *System {
	s := &System{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteText places text on the clipboard.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unsupported() {
		return ErrUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAll(text); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// WriteImage places image bytes on the clipboard when the configuration
// allows it.
func (s *System) WriteImage(ctx context.Context, data []byte, mediaType string) error {
	if !s.imageAsDataURI || mediaType != qrcode.MediaTypePNG {
		return fmt.Errorf("%w: %s", ErrUnsupported, mediaType)
	}
	return s.WriteText(ctx, qrcode.DataURI(data))
}

// ReadText returns the clipboard text.
func (s *System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if unsupported() {
		return "", ErrUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	text, err := readAll()
	if err != nil {
		return "", errors.Join(ErrReadFailed, err)
	}
	return text, nil
}
