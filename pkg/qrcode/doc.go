// Package qrcode is the encoding capability of qrstudio: it turns a payload
// and its rendering options into either a raster image or an SVG document.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode. The
// library provides the module matrix; this package draws it with custom
// colors, a configurable quiet zone and an exact pixel size.
//
// # Architecture
//
// Matrix produces the borderless module matrix for a payload and error
// correction Level. Raster and Vector share it:
//
//   - Raster paints a Size x Size *image.NRGBA, mapping every pixel onto a
//     module so the output always has the requested dimensions.
//   - Vector emits a self-contained SVG document whose viewBox is measured in
//     modules, so it scales without loss.
//
// Both are deterministic: identical Config values produce identical output.
// Generator bundles both functions behind the method set consumed by the
// derivation pipeline.
//
// # Usage
//
//	cfg := qrcode.Config{
//		Payload:    "https://example.com",
//		Size:       320,
//		Level:      qrcode.LevelM,
//		Foreground: qrcode.MustParseColor("#111827"),
//		Background: qrcode.MustParseColor("#ffffff"),
//		QuietZone:  2,
//	}
//
//	img, err := qrcode.Raster(ctx, cfg)
//	if err != nil {
//		// handle error
//	}
//	svg, err := qrcode.Vector(ctx, cfg)
//
// # Error Handling
//
// The functions return well-defined sentinel errors:
//
//   - ErrEmptyContent             – the payload was empty.
//   - ErrCapacityExceeded         – the payload does not fit the largest symbol
//     at the chosen Level. Stricter levels overflow at shorter payloads:
//     H before Q before M before L.
//   - ErrorFailedToGenerateQRCode – the underlying library failed otherwise.
//   - ErrInvalidColor, ErrInvalidLevel – option parsing failures.
//
// Wrap your error handling with errors.Is for robust comparisons.
package qrcode
