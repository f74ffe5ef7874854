// Package pipeline is the derivation engine: it turns each configuration
// snapshot into a raster and a vector representation and keeps both
// consistent with the latest snapshot while derivations overlap.
//
// # Generation tokens
//
// OnConfigChange assigns every snapshot a monotonically increasing
// generation and launches the two derivations concurrently. When a
// derivation settles it compares its token with the engine's latest one
// under the engine lock; a mismatch discards the result. Nothing is
// cancelled: a superseded derivation runs to completion and is dropped.
//
// # Visibility
//
// Results of the latest generation are staged and become visible together
// once both succeeded. Until then State keeps returning the previous
// consistent pair with Pending set, so re-applying the same snapshot never
// flickers through an empty state. A failure of either derivation fills the
// error slot with a *DerivationError and clears both representations. An
// empty payload clears everything synchronously and launches nothing.
//
// The raster surface belongs to the engine and is redrawn in place; State
// hands out copies.
package pipeline
