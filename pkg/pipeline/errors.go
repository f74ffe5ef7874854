package pipeline

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// ErrEncoderPanic is reported when the encoder panics instead of returning.
var ErrEncoderPanic = errors.New("pipeline: encoder panicked")

// DerivationError is the single error slot of the engine. It unwraps to the
// encoder error, so errors.Is(err, qrcode.ErrCapacityExceeded) works.
type DerivationError struct {
	Generation uint64
	Kind       Kind
	// Config is the snapshot that failed. The visible state is cleared, so
	// this is the only place its level survives.
	Config qrcode.Config
	Err    error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("pipeline: %s derivation #%d failed: %v", e.Kind, e.Generation, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }
