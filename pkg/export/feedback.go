package export

import "time"

// FeedbackKind is the transient confirmation shown after a copy.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackCopiedRaster
	FeedbackCopiedVector
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackCopiedRaster:
		return "copied_raster"
	case FeedbackCopiedVector:
		return "copied_vector"
	default:
		return "none"
	}
}

// Feedback is the current confirmation and the moment it lapses.
type Feedback struct {
	Kind      FeedbackKind
	ExpiresAt time.Time
}

// Active reports whether f is a confirmation that has not expired at now.
func (f Feedback) Active(now time.Time) bool {
	return f.Kind != FeedbackNone && now.Before(f.ExpiresAt)
}

// Outcome is the result of an export action. Callers act on Done and
// otherwise show nothing.
type Outcome int

const (
	// Unavailable: the required representation is absent; nothing happened.
	Unavailable Outcome = iota
	// Done: the export was performed.
	Done
	// Denied: the platform refused; degraded silently.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Denied:
		return "denied"
	default:
		return "unavailable"
	}
}

// Err maps the outcome onto the package sentinels; Done maps to nil.
func (o Outcome) Err() error {
	switch o {
	case Done:
		return nil
	case Denied:
		return ErrExportDenied
	default:
		return ErrUnavailable
	}
}

// Availability tells the presentation shell which actions to enable.
type Availability struct {
	CopyRaster     bool
	DownloadRaster bool
	CopyVector     bool
	DownloadVector bool
}
