package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Default file names and feedback lifetime.
const (
	DefaultRasterName  = "qrcode.png"
	DefaultVectorName  = "qrcode.svg"
	DefaultFeedbackTTL = 1200 * time.Millisecond
)

// Clipboard is the system clipboard service.
type Clipboard interface {
	WriteImage(ctx context.Context, data []byte, mediaType string) error
	WriteText(ctx context.Context, text string) error
}

// Downloader triggers a platform save of data under name.
type Downloader interface {
	Download(ctx context.Context, name string, data []byte, mediaType string) error
}

// Source exposes the committed representations.
type Source interface {
	State() pipeline.State
}

// Actions implements copy and download for both representations. Each action
// reads the current state on demand and is a no-op when its representation
// is absent.
type Actions struct {
	src    Source
	clip   Clipboard
	dl     Downloader
	logger *slog.Logger
	events *broadcast.MemoryBroadcaster[Feedback]

	ttl        time.Duration
	now        func() time.Time
	rasterName string
	vectorName string

	mu       sync.Mutex
	feedback Feedback
	token    uint64
	timer    *time.Timer
}

// Option configures Actions.
type Option func(*Actions)

func WithLogger(l *slog.Logger) Option {
	return func(a *Actions) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithFeedbackTTL sets how long a copy confirmation stays visible.
func WithFeedbackTTL(d time.Duration) Option {
	return func(a *Actions) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithClock overrides time.Now, used for ExpiresAt.
func WithClock(now func() time.Time) Option {
	return func(a *Actions) {
		if now != nil {
			a.now = now
		}
	}
}

// WithFileNames overrides the download file names.
func WithFileNames(raster, vector string) Option {
	return func(a *Actions) {
		if raster != "" {
			a.rasterName = raster
		}
		if vector != "" {
			a.vectorName = vector
		}
	}
}

// New creates export actions reading from src.
func New(src Source, clip Clipboard, dl Downloader, opts ...Option) *Actions {
	a := &Actions{
		src:        src,
		clip:       clip,
		dl:         dl,
		logger:     logger.Discard(),
		events:     broadcast.NewMemoryBroadcaster[Feedback](4),
		ttl:        DefaultFeedbackTTL,
		now:        time.Now,
		rasterName: DefaultRasterName,
		vectorName: DefaultVectorName,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Availability reports which actions currently have their representation.
func (a *Actions) Availability() Availability {
	st := a.src.State()
	return Availability{
		CopyRaster:     st.HasRaster() && a.clip != nil,
		DownloadRaster: st.HasRaster() && a.dl != nil,
		CopyVector:     st.HasVector() && a.clip != nil,
		DownloadVector: st.HasVector() && a.dl != nil,
	}
}

// CopyRaster writes the raster as PNG to the clipboard. On success the
// feedback becomes FeedbackCopiedRaster; a refusal leaves it untouched.
func (a *Actions) CopyRaster(ctx context.Context) Outcome {
	st := a.src.State()
	if st.Raster == nil || a.clip == nil {
		return Unavailable
	}

	data, err := qrcode.EncodePNG(st.Raster)
	if err != nil {
		a.logger.WarnContext(ctx, "raster encoding failed", logger.Error(err))
		return Denied
	}
	if err := a.clip.WriteImage(ctx, data, qrcode.MediaTypePNG); err != nil {
		a.logger.DebugContext(ctx, "clipboard image write refused", logger.Error(err))
		return Denied
	}

	a.setFeedback(ctx, FeedbackCopiedRaster)
	return Done
}

// CopyVector writes the SVG markup as text to the clipboard.
func (a *Actions) CopyVector(ctx context.Context) Outcome {
	st := a.src.State()
	if st.Vector == "" || a.clip == nil {
		return Unavailable
	}

	if err := a.clip.WriteText(ctx, st.Vector); err != nil {
		a.logger.DebugContext(ctx, "clipboard text write refused", logger.Error(err))
		return Denied
	}

	a.setFeedback(ctx, FeedbackCopiedVector)
	return Done
}

// DownloadRaster saves the raster as a PNG file. Download failures are
// logged only.
func (a *Actions) DownloadRaster(ctx context.Context) Outcome {
	st := a.src.State()
	if st.Raster == nil || a.dl == nil {
		return Unavailable
	}

	data, err := qrcode.EncodePNG(st.Raster)
	if err != nil {
		a.logger.WarnContext(ctx, "raster encoding failed", logger.Error(err))
		return Done
	}
	a.download(ctx, a.rasterName, data, qrcode.MediaTypePNG)
	return Done
}

// DownloadVector saves the SVG document as a file.
func (a *Actions) DownloadVector(ctx context.Context) Outcome {
	st := a.src.State()
	if st.Vector == "" || a.dl == nil {
		return Unavailable
	}

	a.download(ctx, a.vectorName, []byte(st.Vector), qrcode.MediaTypeSVG)
	return Done
}

func (a *Actions) download(ctx context.Context, name string, data []byte, mediaType string) {
	if err := a.dl.Download(ctx, name, data, mediaType); err != nil {
		a.logger.WarnContext(ctx, "download failed",
			logger.Path(name),
			logger.Error(err),
		)
		return
	}
	a.logger.DebugContext(ctx, "download triggered",
		logger.Path(name),
		slog.Int("bytes", len(data)),
	)
}

// Feedback returns the current confirmation; expired ones read as none.
func (a *Actions) Feedback() Feedback {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.feedback.Active(a.now()) {
		return Feedback{}
	}
	return a.feedback
}

// Subscribe observes feedback changes, including expiry.
func (a *Actions) Subscribe(ctx context.Context) broadcast.Subscriber[Feedback] {
	return a.events.Subscribe(ctx)
}

// setFeedback shows kind for one TTL. The scheduled reset only clears the
// feedback it was scheduled for; a newer copy gets its own full TTL.
func (a *Actions) setFeedback(ctx context.Context, kind FeedbackKind) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.token++
	token := a.token
	a.feedback = Feedback{Kind: kind, ExpiresAt: a.now().Add(a.ttl)}
	_ = a.events.Broadcast(ctx, broadcast.Message[Feedback]{Data: a.feedback})

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.ttl, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.token != token {
			return
		}
		a.feedback = Feedback{}
		_ = a.events.Broadcast(context.Background(), broadcast.Message[Feedback]{Data: a.feedback})
	})
}

// Close stops the pending feedback timer and releases subscribers.
func (a *Actions) Close() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.token++
	a.mu.Unlock()
	return a.events.Close()
}
