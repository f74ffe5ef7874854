// Package settings is the configuration store: it holds the user-editable
// qrcode.Config and turns every edit into a new immutable Snapshot.
//
// Numeric fields are clamped into their ranges (size 128..1024 px, quiet
// zone 0..8 modules) instead of being rejected, so Update cannot fail. Edits
// passed to one Update call are applied together and published as a single
// snapshot.
//
//	store := settings.New(settings.Default())
//	snap := store.Update(ctx,
//		settings.WithPayload("https://example.com"),
//		settings.WithLevel(qrcode.LevelH),
//	)
//
// LoadPreset reads a partial configuration from YAML and returns it as edits.
package settings
