package qrstudio

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
	"github.com/dmitrymomot/qrstudio/pkg/export"
	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
)

// SamplePayload is inserted by InsertSample.
const SamplePayload = "https://example.com"

// TextReader is implemented by clipboards that can be read. Paste uses it
// when the clipboard passed to New provides it.
type TextReader interface {
	ReadText(ctx context.Context) (string, error)
}

// Studio is one editing session: a configuration store feeding a derivation
// engine, and export actions reading the engine's state.
type Studio struct {
	store   *settings.Store
	engine  *pipeline.Engine
	actions *export.Actions
	reader  TextReader

	id     string
	logger *slog.Logger

	// Serializes store updates with their hand-off to the engine so the
	// engine sees configurations in store order.
	mu sync.Mutex
}

type options struct {
	logger      *slog.Logger
	initial     qrcode.Config
	feedbackTTL time.Duration
	rasterName  string
	vectorName  string
}

// Option configures a Studio.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithInitialConfig sets the configuration the session starts from.
// It is clamped like any other update.
func WithInitialConfig(cfg qrcode.Config) Option {
	return func(o *options) { o.initial = cfg }
}

// WithFeedbackTTL sets how long copy confirmations stay visible.
func WithFeedbackTTL(d time.Duration) Option {
	return func(o *options) { o.feedbackTTL = d }
}

// WithFileNames overrides the download file names.
func WithFileNames(raster, vector string) Option {
	return func(o *options) {
		o.rasterName = raster
		o.vectorName = vector
	}
}

// New starts a session. clip and dl may be nil, which makes the matching
// actions permanently unavailable. If the initial configuration carries a
// payload, its derivation starts immediately.
func New(enc pipeline.Encoder, clip export.Clipboard, dl export.Downloader, opts ...Option) *Studio {
	o := &options{
		logger:      logger.Discard(),
		initial:     settings.Default(),
		feedbackTTL: export.DefaultFeedbackTTL,
		rasterName:  export.DefaultRasterName,
		vectorName:  export.DefaultVectorName,
	}
	for _, opt := range opts {
		opt(o)
	}

	id := uuid.NewString()
	log := o.logger.With(logger.SessionID(id))

	s := &Studio{
		id:     id,
		logger: log,
		store:  settings.New(o.initial, settings.WithLogger(log.With(logger.Component("settings")))),
		engine: pipeline.New(enc, pipeline.WithLogger(log.With(logger.Component("pipeline")))),
	}
	s.actions = export.New(s.engine, clip, dl,
		export.WithLogger(log.With(logger.Component("export"))),
		export.WithFeedbackTTL(o.feedbackTTL),
		export.WithFileNames(o.rasterName, o.vectorName),
	)
	if r, ok := clip.(TextReader); ok {
		s.reader = r
	}

	initial := s.store.Current()
	if initial.Config.Payload != "" {
		s.engine.OnConfigChange(context.Background(), initial.Config)
	}
	log.Debug("session started")
	return s
}

// SessionID identifies the session in logs.
func (s *Studio) SessionID() string {
	return s.id
}

// Update is the single mutation entry point. It applies edits to the
// configuration and schedules derivation of the resulting snapshot.
func (s *Studio) Update(ctx context.Context, edits ...settings.Edit) settings.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.store.Update(ctx, edits...)
	s.engine.OnConfigChange(ctx, snap.Config)
	return snap
}

// Config returns the current configuration snapshot.
func (s *Studio) Config() settings.Snapshot {
	return s.store.Current()
}

// State returns the current derived state.
func (s *Studio) State() pipeline.State {
	return s.engine.State()
}

// Wait blocks until no derivation is in flight.
func (s *Studio) Wait(ctx context.Context) error {
	return s.engine.Wait(ctx)
}

// Subscribe observes derived state changes. Only the newest states are
// buffered for slow readers.
func (s *Studio) Subscribe(ctx context.Context) broadcast.Subscriber[pipeline.State] {
	return s.engine.Subscribe(ctx)
}

func (s *Studio) Availability() export.Availability { return s.actions.Availability() }

func (s *Studio) Feedback() export.Feedback { return s.actions.Feedback() }

func (s *Studio) CopyRaster(ctx context.Context) export.Outcome {
	return s.logOutcome(ctx, "copy_raster", s.actions.CopyRaster(ctx))
}

func (s *Studio) CopyVector(ctx context.Context) export.Outcome {
	return s.logOutcome(ctx, "copy_vector", s.actions.CopyVector(ctx))
}

func (s *Studio) DownloadRaster(ctx context.Context) export.Outcome {
	return s.logOutcome(ctx, "download_raster", s.actions.DownloadRaster(ctx))
}

func (s *Studio) DownloadVector(ctx context.Context) export.Outcome {
	return s.logOutcome(ctx, "download_vector", s.actions.DownloadVector(ctx))
}

// QuickCopy is the keyboard shortcut: it copies the raster, but only while
// the payload is non-empty.
func (s *Studio) QuickCopy(ctx context.Context) export.Outcome {
	if s.PayloadLength() == 0 {
		return export.Unavailable
	}
	return s.CopyRaster(ctx)
}

// Paste replaces the payload with the clipboard text. Read failures and an
// empty clipboard leave the payload unchanged and report false.
func (s *Studio) Paste(ctx context.Context) bool {
	if s.reader == nil {
		return false
	}
	text, err := s.reader.ReadText(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "clipboard read failed", logger.Error(err))
		return false
	}
	if text == "" {
		return false
	}
	s.Update(ctx, settings.WithPayload(text))
	return true
}

// InsertSample replaces the payload with SamplePayload.
func (s *Studio) InsertSample(ctx context.Context) settings.Snapshot {
	return s.Update(ctx, settings.WithPayload(SamplePayload))
}

// PayloadLength counts the characters (runes) of the current payload.
func (s *Studio) PayloadLength() int {
	return utf8.RuneCountInString(s.store.Current().Config.Payload)
}

func (s *Studio) logOutcome(ctx context.Context, action string, out export.Outcome) export.Outcome {
	s.logger.DebugContext(ctx, "export action",
		slog.String("action", action),
		logger.Outcome(out.String()),
	)
	return out
}

// Close shuts the session down. Derivations still in flight finish in the
// background and are discarded.
func (s *Studio) Close() error {
	return errors.Join(
		s.actions.Close(),
		s.engine.Close(),
		s.store.Close(),
	)
}
