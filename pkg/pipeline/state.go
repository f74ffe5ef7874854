package pipeline

import (
	"image"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Kind names one of the two representations.
type Kind string

const (
	KindRaster Kind = "raster"
	KindVector Kind = "vector"
)

// State is a read-only snapshot of the engine.
type State struct {
	// Generation of the visible representations; 0 when none are visible.
	Generation uint64
	// Latest is the most recently assigned generation.
	Latest uint64
	// Config the visible representations were derived from.
	Config qrcode.Config
	// Raster is a private copy of the raster surface, nil when cleared.
	Raster *image.NRGBA
	// Vector is the SVG document, empty when cleared.
	Vector string
	// Err is a *DerivationError when the latest derivation failed.
	Err error
	// Pending reports derivations for Latest that have not settled yet.
	Pending bool
}

// HasRaster reports whether a raster representation is committed.
func (s State) HasRaster() bool { return s.Raster != nil }

// HasVector reports whether a vector representation is committed.
func (s State) HasVector() bool { return s.Vector != "" }

// Empty reports the cleared state: no representations and no error.
func (s State) Empty() bool {
	return s.Raster == nil && s.Vector == "" && s.Err == nil
}
