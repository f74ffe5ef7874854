package settings

import (
	"context"
	"image/color"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Ranges of the numeric fields. Values outside are clamped, never rejected.
const (
	MinSize          = 128
	MaxSize          = 1024
	DefaultSize      = 320
	MinQuietZone     = 0
	MaxQuietZone     = 8
	DefaultQuietZone = 2
)

var (
	DefaultForeground = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff} // #111827
	DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff} // #ffffff
)

// DefaultLevel is the error-correction level used when none is set.
const DefaultLevel = qrcode.LevelM

// Default returns the initial configuration with an empty payload.
func Default() qrcode.Config {
	return qrcode.Config{
		Size:       DefaultSize,
		Level:      DefaultLevel,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		QuietZone:  DefaultQuietZone,
	}
}

// Clamp forces the numeric fields into their ranges and replaces an unknown
// level with DefaultLevel.
func Clamp(cfg qrcode.Config) qrcode.Config {
	cfg.Size = min(max(cfg.Size, MinSize), MaxSize)
	cfg.QuietZone = min(max(cfg.QuietZone, MinQuietZone), MaxQuietZone)
	if !cfg.Level.Valid() {
		cfg.Level = DefaultLevel
	}
	return cfg
}

// Snapshot is one immutable state of the store.
type Snapshot struct {
	Seq    uint64
	Config qrcode.Config
}

// Edit changes one or more fields of a configuration being built.
type Edit func(*qrcode.Config)

func WithPayload(s string) Edit { return func(c *qrcode.Config) { c.Payload = s } }

func WithSize(px int) Edit { return func(c *qrcode.Config) { c.Size = px } }

// WithLevel sets the error-correction level. Unknown levels are ignored and
// the previous level is kept.
func WithLevel(l qrcode.Level) Edit {
	return func(c *qrcode.Config) {
		if l.Valid() {
			c.Level = l
		}
	}
}

func WithForeground(fg color.NRGBA) Edit { return func(c *qrcode.Config) { c.Foreground = fg } }

func WithBackground(bg color.NRGBA) Edit { return func(c *qrcode.Config) { c.Background = bg } }

func WithQuietZone(modules int) Edit { return func(c *qrcode.Config) { c.QuietZone = modules } }

// WithConfig replaces every field at once.
func WithConfig(cfg qrcode.Config) Edit {
	return func(c *qrcode.Config) {
		prev := c.Level
		*c = cfg
		if !cfg.Level.Valid() {
			c.Level = prev
		}
	}
}

// Store holds the current configuration. Every Update produces a new
// Snapshot; readers never observe a partially applied edit.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	events  *broadcast.MemoryBroadcaster[Snapshot]
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store seeded with the clamped initial configuration.
func New(initial qrcode.Config, opts ...Option) *Store {
	s := &Store{
		current: Snapshot{Config: Clamp(initial)},
		events:  broadcast.NewMemoryBroadcaster[Snapshot](4),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update applies edits in order to a copy of the current configuration,
// clamps it and publishes the result as the new snapshot.
func (s *Store) Update(ctx context.Context, edits ...Edit) Snapshot {
	s.mu.Lock()
	cfg := s.current.Config
	for _, edit := range edits {
		if edit != nil {
			edit(&cfg)
		}
	}
	next := Snapshot{Seq: s.current.Seq + 1, Config: Clamp(cfg)}
	s.current = next
	// Published under the lock so subscribers see snapshots in Seq order.
	_ = s.events.Broadcast(ctx, broadcast.Message[Snapshot]{Data: next})
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "configuration updated",
		slog.Uint64("seq", next.Seq),
		slog.Int("payload_len", len(next.Config.Payload)),
		slog.Int("size", next.Config.Size),
		slog.String("level", next.Config.Level.String()),
		slog.Int("quiet_zone", next.Config.QuietZone),
	)
	return next
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe observes every subsequent snapshot.
func (s *Store) Subscribe(ctx context.Context) broadcast.Subscriber[Snapshot] {
	return s.events.Subscribe(ctx)
}

// Close releases subscribers.
func (s *Store) Close() error {
	return s.events.Close()
}
