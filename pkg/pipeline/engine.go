package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/image/draw"

	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Encoder is the encoding capability the engine drives. Both methods must be
// deterministic for identical configurations.
type Encoder interface {
	Raster(ctx context.Context, cfg qrcode.Config) (*image.NRGBA, error)
	Vector(ctx context.Context, cfg qrcode.Config) (string, error)
}

// staged collects the results of one generation until both have settled.
type staged struct {
	gen    uint64
	cfg    qrcode.Config
	raster *image.NRGBA
	vector string
	ready  map[Kind]bool
	failed bool
}

// Engine keeps the raster and vector representations consistent with the
// latest configuration it was given.
//
// Every non-empty configuration gets a new generation token and two
// concurrent derivations. A derivation commits only if its token is still the
// latest one; anything else is dropped. Results of the latest generation
// become visible together, so the two representations never reflect
// different configurations.
type Engine struct {
	enc    Encoder
	logger *slog.Logger
	events *broadcast.MemoryBroadcaster[State]

	mu       sync.Mutex
	gen      uint64
	stage    *staged
	surface  *image.NRGBA // owned; redrawn in place on commit
	shown    bool
	shownGen uint64
	shownCfg qrcode.Config
	vector   string
	err      error

	inflight int
	idle     chan struct{} // closed while inflight == 0
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventBuffer sets the per-subscriber buffer of state events.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		e.events = broadcast.NewMemoryBroadcaster[State](n)
	}
}

// New creates an engine driving enc.
func New(enc Encoder, opts ...Option) *Engine {
	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		enc:    enc,
		logger: logger.Discard(),
		events: broadcast.NewMemoryBroadcaster[State](4),
		idle:   idle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnConfigChange is the single mutation entry point. It returns the
// generation token assigned to cfg.
//
// An empty payload clears both representations and the error slot before
// returning and launches no work. Any other payload starts a raster and a
// vector derivation; their outcome is visible through State once settled.
func (e *Engine) OnConfigChange(ctx context.Context, cfg qrcode.Config) uint64 {
	e.mu.Lock()
	e.gen++
	gen := e.gen

	if cfg.Payload == "" {
		// Bumping the token above makes every in-flight result stale.
		e.stage = nil
		e.err = nil
		e.clearLocked()
		e.publishLocked(ctx)
		e.mu.Unlock()

		e.logger.DebugContext(ctx, "representations cleared", logger.Generation(gen))
		return gen
	}

	e.stage = &staged{gen: gen, cfg: cfg, ready: make(map[Kind]bool, 2)}
	if e.inflight == 0 {
		e.idle = make(chan struct{})
	}
	e.inflight += 2
	e.publishLocked(ctx)
	e.mu.Unlock()

	// Stale work is never cancelled, it completes and is discarded.
	dctx := withGeneration(context.WithoutCancel(ctx), gen)
	e.logger.DebugContext(dctx, "derivation started",
		slog.Int("payload_len", len(cfg.Payload)),
		slog.Int("size", cfg.Size),
		slog.String("level", cfg.Level.String()),
	)

	go func() {
		img, err := e.raster(dctx, cfg)
		e.settle(dctx, gen, KindRaster, err, func(s *staged) { s.raster = img })
	}()
	go func() {
		svg, err := e.vectorize(dctx, cfg)
		e.settle(dctx, gen, KindVector, err, func(s *staged) { s.vector = svg })
	}()

	return gen
}

func (e *Engine) raster(ctx context.Context, cfg qrcode.Config) (img *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrEncoderPanic, r)
		}
	}()
	img, err = e.enc.Raster(ctx, cfg)
	if err == nil && img == nil {
		err = fmt.Errorf("%w: nil raster", qrcode.ErrorFailedToGenerateQRCode)
	}
	return img, err
}

func (e *Engine) vectorize(ctx context.Context, cfg qrcode.Config) (svg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			svg, err = "", fmt.Errorf("%w: %v", ErrEncoderPanic, r)
		}
	}()
	svg, err = e.enc.Vector(ctx, cfg)
	if err == nil && svg == "" {
		err = fmt.Errorf("%w: empty vector", qrcode.ErrorFailedToGenerateQRCode)
	}
	return svg, err
}

// settle is the compare-and-commit step. It runs entirely under the engine
// lock so no snapshot can arrive between the token check and the commit.
func (e *Engine) settle(ctx context.Context, gen uint64, kind Kind, err error, apply func(*staged)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.doneLocked()

	if gen != e.gen || e.stage == nil || e.stage.gen != gen {
		e.logger.DebugContext(ctx, "stale derivation discarded",
			logger.Kind(string(kind)),
			slog.Uint64("latest", e.gen),
		)
		return
	}
	if e.stage.failed {
		// The sibling already failed this generation.
		return
	}

	if err != nil {
		e.stage.failed = true
		e.err = &DerivationError{Generation: gen, Kind: kind, Config: e.stage.cfg, Err: err}
		e.clearLocked()
		e.publishLocked(ctx)
		// The failure is state the shell renders, not an operational fault.
		e.logger.InfoContext(ctx, "derivation failed",
			logger.Kind(string(kind)),
			logger.Error(err),
		)
		return
	}

	apply(e.stage)
	e.stage.ready[kind] = true
	if !e.stage.ready[KindRaster] || !e.stage.ready[KindVector] {
		return
	}

	e.commitLocked(e.stage)
	e.stage = nil
	e.publishLocked(ctx)
	e.logger.DebugContext(ctx, "representations committed")
}

func (e *Engine) commitLocked(s *staged) {
	b := s.raster.Bounds()
	if e.surface == nil || e.surface.Bounds().Size() != b.Size() {
		e.surface = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(e.surface, e.surface.Bounds(), s.raster, b.Min, draw.Src)

	e.shown = true
	e.shownGen = s.gen
	e.shownCfg = s.cfg
	e.vector = s.vector
	e.err = nil
}

// clearLocked empties both representations. The surface is zeroed, not
// released.
func (e *Engine) clearLocked() {
	if e.surface != nil {
		clear(e.surface.Pix)
	}
	e.shown = false
	e.shownGen = 0
	e.shownCfg = qrcode.Config{}
	e.vector = ""
}

func (e *Engine) doneLocked() {
	e.inflight--
	if e.inflight == 0 {
		close(e.idle)
	}
}

func (e *Engine) stateLocked() State {
	st := State{
		Generation: e.shownGen,
		Latest:     e.gen,
		Config:     e.shownCfg,
		Vector:     e.vector,
		Err:        e.err,
		Pending:    e.stage != nil && !e.stage.failed,
	}
	if e.shown {
		st.Raster = image.NewNRGBA(e.surface.Rect)
		copy(st.Raster.Pix, e.surface.Pix)
	}
	return st
}

func (e *Engine) publishLocked(ctx context.Context) {
	if e.events.Len() == 0 {
		return
	}
	_ = e.events.Broadcast(ctx, broadcast.Message[State]{Data: e.stateLocked()})
}

// State returns a snapshot of the representations and the error slot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Subscribe observes every visible state change.
func (e *Engine) Subscribe(ctx context.Context) broadcast.Subscriber[State] {
	return e.events.Subscribe(ctx)
}

// Wait blocks until no derivation is in flight or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases subscribers. In-flight derivations still settle.
func (e *Engine) Close() error {
	return e.events.Close()
}
