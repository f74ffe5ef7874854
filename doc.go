// Package qrstudio renders text into a QR code, live, as two synchronized
// representations: a raster image and an SVG document.
//
// A Studio is one editing session. Every change goes through Update, which
// records a new configuration snapshot and starts deriving both
// representations for it in the background. Only the newest configuration
// ever becomes visible: results computed for a superseded snapshot are
// discarded, and the raster and vector always describe the same snapshot.
//
//	studio := qrstudio.New(qrcode.NewGenerator(), clipboard.New(), downloads)
//	defer studio.Close()
//
//	studio.Update(ctx, settings.WithPayload("https://example.com"))
//	if err := studio.Wait(ctx); err != nil {
//		return err
//	}
//	studio.DownloadVector(ctx)
//
// Export actions return an export.Outcome instead of an error. An action
// whose representation is missing reports Unavailable and does nothing;
// a platform refusal reports Denied and is otherwise silent.
//
// The building blocks live under pkg/: qrcode (encoding), settings
// (configuration store), pipeline (derivation engine), export (actions and
// feedback), clipboard and file (platform adapters).
package qrstudio
