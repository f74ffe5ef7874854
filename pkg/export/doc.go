// Package export implements the copy and download actions for both
// representations.
//
// Every action reads the engine state at call time and is a no-op returning
// Unavailable when its representation is absent. Clipboard writes are best
// effort: a refusal yields Denied and no feedback, never an error the user has
// to dismiss. Downloads are fire-and-forget; their failures are only logged.
//
// A successful copy shows a Feedback for a fixed TTL (1.2s by default). The
// reset is scheduled with time.AfterFunc and only clears the feedback it was
// scheduled for: a second copy within the TTL gets its own full TTL instead
// of being cut short by the first copy's timer.
package export
