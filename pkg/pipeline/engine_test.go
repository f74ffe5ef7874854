package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
)

var errBoom = errors.New("boom")

// fakeEncoder renders "svg:<payload>" and a Size x Size image whose first
// pixel encodes the payload length. Calls can be held back with gates.
type fakeEncoder struct {
	mu     sync.Mutex
	gates  map[string]chan struct{}
	fail   map[string]error
	calls  int
	panics bool
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{
		gates: make(map[string]chan struct{}),
		fail:  make(map[string]error),
	}
}

func gateKey(kind pipeline.Kind, payload string) string { return string(kind) + ":" + payload }

// hold blocks the given derivation until the returned func is called.
func (f *fakeEncoder) hold(kind pipeline.Kind, payload string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[gateKey(kind, payload)] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeEncoder) failWith(kind pipeline.Kind, payload string, err error) {
	f.mu.Lock()
	f.fail[gateKey(kind, payload)] = err
	f.mu.Unlock()
}

func (f *fakeEncoder) enter(kind pipeline.Kind, payload string) error {
	f.mu.Lock()
	f.calls++
	gate := f.gates[gateKey(kind, payload)]
	err := f.fail[gateKey(kind, payload)]
	panics := f.panics
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if panics {
		panic("encoder exploded")
	}
	return err
}

func (f *fakeEncoder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEncoder) Raster(_ context.Context, cfg qrcode.Config) (*image.NRGBA, error) {
	if err := f.enter(pipeline.KindRaster, cfg.Payload); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, cfg.Size, cfg.Size))
	img.SetNRGBA(0, 0, color.NRGBA{R: uint8(len(cfg.Payload)), A: 0xff})
	return img, nil
}

func (f *fakeEncoder) Vector(_ context.Context, cfg qrcode.Config) (string, error) {
	if err := f.enter(pipeline.KindVector, cfg.Payload); err != nil {
		return "", err
	}
	return "svg:" + cfg.Payload, nil
}

func configFor(payload string) qrcode.Config {
	cfg := settings.Default()
	cfg.Payload = payload
	return cfg
}

func wait(t *testing.T, e *pipeline.Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

// waitCalls waits until the fake has been entered n times, which means the
// derivations are parked at their gates.
func waitCalls(t *testing.T, f *fakeEncoder, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.Calls() >= n }, 5*time.Second, time.Millisecond)
}

func TestEngine_EmptyPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clears synchronously without encoding", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor(""))

		st := e.State()
		assert.True(t, st.Empty())
		assert.False(t, st.Pending)
		assert.Equal(t, 0, enc.Calls())
	})

	t.Run("clears committed representations and error", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		enc.failWith(pipeline.KindVector, "bad", errBoom)
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("bad"))
		wait(t, e)
		require.Error(t, e.State().Err)

		e.OnConfigChange(ctx, configFor(""))
		assert.True(t, e.State().Empty())

		e.OnConfigChange(ctx, configFor("good"))
		wait(t, e)
		e.OnConfigChange(ctx, configFor(""))
		st := e.State()
		assert.True(t, st.Empty())
		assert.Equal(t, uint64(0), st.Generation)
	})

	t.Run("makes in-flight derivations stale", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		releaseR := enc.hold(pipeline.KindRaster, "slow")
		releaseV := enc.hold(pipeline.KindVector, "slow")
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("slow"))
		waitCalls(t, enc, 2)
		e.OnConfigChange(ctx, configFor(""))

		releaseR()
		releaseV()
		wait(t, e)
		assert.True(t, e.State().Empty())
	})
}

func TestEngine_RealEncoder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("example url renders both representations", func(t *testing.T) {
		t.Parallel()
		e := pipeline.New(qrcode.NewGenerator())
		defer e.Close()

		cfg := configFor("https://example.com")
		cfg.Level = qrcode.LevelM
		cfg.Size = 320
		gen := e.OnConfigChange(ctx, cfg)
		wait(t, e)

		st := e.State()
		require.NoError(t, st.Err)
		require.NotNil(t, st.Raster)
		assert.Equal(t, 320, st.Raster.Bounds().Dx())
		assert.Equal(t, 320, st.Raster.Bounds().Dy())
		assert.True(t, strings.HasPrefix(st.Vector, "<svg"))
		assert.Equal(t, gen, st.Generation)
		assert.Equal(t, cfg, st.Config)
		assert.False(t, st.Pending)
	})

	t.Run("capacity overflow sets error and clears both", func(t *testing.T) {
		t.Parallel()
		e := pipeline.New(qrcode.NewGenerator())
		defer e.Close()

		e.OnConfigChange(ctx, configFor("https://example.com"))
		wait(t, e)
		require.True(t, e.State().HasRaster())

		cfg := configFor(strings.Repeat("z", 5000))
		cfg.Level = qrcode.LevelH
		e.OnConfigChange(ctx, cfg)
		wait(t, e)

		st := e.State()
		require.Error(t, st.Err)
		assert.True(t, errors.Is(st.Err, qrcode.ErrCapacityExceeded))
		var derr *pipeline.DerivationError
		require.ErrorAs(t, st.Err, &derr)
		assert.Equal(t, st.Latest, derr.Generation)
		assert.Equal(t, qrcode.LevelH, derr.Config.Level)
		assert.Equal(t, cfg.Payload, derr.Config.Payload)
		assert.Nil(t, st.Raster)
		assert.Empty(t, st.Vector)
	})
}

func TestEngine_LatestWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("n snapshots before any settles", func(t *testing.T) {
		t.Parallel()
		const n = 6
		enc := newFakeEncoder()
		var releases []func()
		for i := 1; i <= n; i++ {
			p := fmt.Sprintf("payload-%d", i)
			releases = append(releases, enc.hold(pipeline.KindRaster, p), enc.hold(pipeline.KindVector, p))
		}
		e := pipeline.New(enc)
		defer e.Close()

		var last uint64
		for i := 1; i <= n; i++ {
			last = e.OnConfigChange(ctx, configFor(fmt.Sprintf("payload-%d", i)))
		}
		waitCalls(t, enc, 2*n)
		assert.True(t, e.State().Pending)

		// Newest first, so every older result arrives after the final one.
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
		wait(t, e)

		st := e.State()
		require.NoError(t, st.Err)
		assert.Equal(t, last, st.Generation)
		assert.Equal(t, "svg:payload-"+fmt.Sprint(n), st.Vector)
		assert.Equal(t, uint8(len("payload-6")), st.Raster.NRGBAAt(0, 0).R)
		assert.False(t, st.Pending)
	})

	t.Run("slow old result cannot overwrite newer one", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		releaseOld := enc.hold(pipeline.KindRaster, "old")
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("old"))
		waitCalls(t, enc, 2)
		e.OnConfigChange(ctx, configFor("new"))
		require.Eventually(t, func() bool { return e.State().Vector == "svg:new" }, 5*time.Second, time.Millisecond)

		releaseOld()
		wait(t, e)

		st := e.State()
		assert.Equal(t, "svg:new", st.Vector)
		assert.Equal(t, "new", st.Config.Payload)
	})

	t.Run("stale failure is ignored", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		enc.failWith(pipeline.KindVector, "doomed", errBoom)
		release := enc.hold(pipeline.KindVector, "doomed")
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("doomed"))
		waitCalls(t, enc, 2)
		e.OnConfigChange(ctx, configFor("fine"))
		release()
		wait(t, e)

		st := e.State()
		assert.NoError(t, st.Err)
		assert.Equal(t, "svg:fine", st.Vector)
	})
}

func TestEngine_PairConsistency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("half settled generation keeps previous pair", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		e := pipeline.New(enc)
		defer e.Close()

		first := e.OnConfigChange(ctx, configFor("a"))
		wait(t, e)

		releaseV := enc.hold(pipeline.KindVector, "bb")
		second := e.OnConfigChange(ctx, configFor("bb"))
		// Both derivations of "bb" entered; only the vector is held.
		waitCalls(t, enc, 4)

		st := e.State()
		assert.Equal(t, first, st.Generation)
		assert.Equal(t, "svg:a", st.Vector)
		assert.Equal(t, uint8(1), st.Raster.NRGBAAt(0, 0).R)
		assert.True(t, st.Pending)

		releaseV()
		wait(t, e)
		st = e.State()
		assert.Equal(t, second, st.Generation)
		assert.Equal(t, "svg:bb", st.Vector)
		assert.Equal(t, uint8(2), st.Raster.NRGBAAt(0, 0).R)
	})

	t.Run("failure of one clears both and drops the sibling", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("ok"))
		wait(t, e)

		enc.failWith(pipeline.KindVector, "broken", errBoom)
		releaseR := enc.hold(pipeline.KindRaster, "broken")
		e.OnConfigChange(ctx, configFor("broken"))
		require.Eventually(t, func() bool { return e.State().Err != nil }, 5*time.Second, time.Millisecond)

		releaseR()
		wait(t, e)

		st := e.State()
		require.Error(t, st.Err)
		assert.ErrorIs(t, st.Err, errBoom)
		var derr *pipeline.DerivationError
		require.ErrorAs(t, st.Err, &derr)
		assert.Equal(t, pipeline.KindVector, derr.Kind)
		assert.Nil(t, st.Raster)
		assert.Empty(t, st.Vector)
		assert.False(t, st.Pending)
	})

	t.Run("error clears on next successful snapshot", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		enc.failWith(pipeline.KindRaster, "x", errBoom)
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("x"))
		wait(t, e)
		require.Error(t, e.State().Err)

		e.OnConfigChange(ctx, configFor("y"))
		wait(t, e)
		st := e.State()
		assert.NoError(t, st.Err)
		assert.Equal(t, "svg:y", st.Vector)
	})

	t.Run("encoder panic becomes derivation error", func(t *testing.T) {
		t.Parallel()
		enc := newFakeEncoder()
		enc.panics = true
		e := pipeline.New(enc)
		defer e.Close()

		e.OnConfigChange(ctx, configFor("p"))
		wait(t, e)
		assert.ErrorIs(t, e.State().Err, pipeline.ErrEncoderPanic)
		assert.Nil(t, e.State().Raster)
	})
}

func TestEngine_RederivesOnStyleChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	enc := newFakeEncoder()
	e := pipeline.New(enc)
	defer e.Close()

	cfg := configFor("same")
	e.OnConfigChange(ctx, cfg)
	wait(t, e)

	cfg.Foreground = color.NRGBA{R: 0xff, A: 0xff}
	cfg.Size = 512
	e.OnConfigChange(ctx, cfg)
	wait(t, e)

	assert.Equal(t, 4, enc.Calls())
	st := e.State()
	assert.Equal(t, 512, st.Raster.Bounds().Dx())
	assert.Equal(t, cfg, st.Config)
}

func TestEngine_IdempotentReapply(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := pipeline.New(qrcode.NewGenerator(), pipeline.WithEventBuffer(16))
	defer e.Close()

	cfg := configFor("https://example.com")
	e.OnConfigChange(ctx, cfg)
	wait(t, e)
	before := e.State()

	sub := e.Subscribe(ctx)
	e.OnConfigChange(ctx, cfg)
	wait(t, e)
	after := e.State()

	require.NoError(t, e.Close())
	var events []pipeline.State
	for msg := range sub.Receive(ctx) {
		events = append(events, msg.Data)
	}

	require.NotEmpty(t, events)
	for _, st := range events {
		assert.NoError(t, st.Err)
		require.NotNil(t, st.Raster, "no empty flicker")
		assert.Equal(t, before.Vector, st.Vector)
		assert.Equal(t, before.Raster.Pix, st.Raster.Pix)
	}
	assert.Equal(t, before.Vector, after.Vector)
	assert.Equal(t, before.Raster.Pix, after.Raster.Pix)
	assert.Greater(t, after.Generation, before.Generation)
}

func TestEngine_StateIsACopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := pipeline.New(newFakeEncoder())
	defer e.Close()

	e.OnConfigChange(ctx, configFor("abc"))
	wait(t, e)

	st := e.State()
	st.Raster.SetNRGBA(0, 0, color.NRGBA{R: 99, A: 0xff})
	assert.Equal(t, uint8(3), e.State().Raster.NRGBAAt(0, 0).R)
}

func TestEngine_WaitHonoursContext(t *testing.T) {
	t.Parallel()
	enc := newFakeEncoder()
	release := enc.hold(pipeline.KindRaster, "hold")
	e := pipeline.New(enc)
	defer e.Close()

	e.OnConfigChange(context.Background(), configFor("hold"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.DeadlineExceeded)

	release()
	wait(t, e)
}

func TestGenerationAttr(t *testing.T) {
	t.Parallel()

	_, ok := pipeline.GenerationAttr(context.Background())
	assert.False(t, ok)

	_, ok = pipeline.GenerationFromContext(context.Background())
	assert.False(t, ok)
}
