package export_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/pkg/export"
	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteImage(ctx context.Context, data []byte, mediaType string) error {
	args := m.Called(ctx, data, mediaType)
	return args.Error(0)
}

func (m *MockClipboard) WriteText(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Download(ctx context.Context, name string, data []byte, mediaType string) error {
	args := m.Called(ctx, name, data, mediaType)
	return args.Error(0)
}

type stubSource struct {
	mu sync.Mutex
	st pipeline.State
}

func (s *stubSource) State() pipeline.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func readySource() *stubSource {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{A: 0xff})
	return &stubSource{st: pipeline.State{Generation: 1, Raster: img, Vector: "<svg/>"}}
}

func isPNG(data []byte) bool {
	_, err := png.Decode(bytes.NewReader(data))
	return err == nil
}

func TestActions_Unavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clip := new(MockClipboard)
	dl := new(MockDownloader)
	a := export.New(&stubSource{}, clip, dl)
	defer a.Close()

	assert.Equal(t, export.Unavailable, a.CopyRaster(ctx))
	assert.Equal(t, export.Unavailable, a.CopyVector(ctx))
	assert.Equal(t, export.Unavailable, a.DownloadRaster(ctx))
	assert.Equal(t, export.Unavailable, a.DownloadVector(ctx))
	assert.Equal(t, export.Availability{}, a.Availability())
	assert.Equal(t, export.FeedbackNone, a.Feedback().Kind)

	clip.AssertNotCalled(t, "WriteImage", mock.Anything, mock.Anything, mock.Anything)
	clip.AssertNotCalled(t, "WriteText", mock.Anything, mock.Anything)
	dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestActions_Availability(t *testing.T) {
	t.Parallel()

	a := export.New(readySource(), new(MockClipboard), new(MockDownloader))
	defer a.Close()
	assert.Equal(t, export.Availability{
		CopyRaster: true, DownloadRaster: true, CopyVector: true, DownloadVector: true,
	}, a.Availability())

	vectorOnly := &stubSource{st: pipeline.State{Vector: "<svg/>"}}
	b := export.New(vectorOnly, new(MockClipboard), nil)
	defer b.Close()
	assert.Equal(t, export.Availability{CopyVector: true}, b.Availability())
}

func TestActions_CopyRaster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success sets feedback", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteImage", ctx, mock.MatchedBy(isPNG), "image/png").Return(nil).Once()

		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		a := export.New(readySource(), clip, nil,
			export.WithClock(func() time.Time { return now }),
			export.WithFeedbackTTL(time.Hour),
		)
		defer a.Close()

		assert.Equal(t, export.Done, a.CopyRaster(ctx))
		fb := a.Feedback()
		assert.Equal(t, export.FeedbackCopiedRaster, fb.Kind)
		assert.Equal(t, now.Add(time.Hour), fb.ExpiresAt)
		clip.AssertExpectations(t)
	})

	t.Run("refusal leaves feedback unset", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteImage", ctx, mock.Anything, "image/png").Return(errors.New("permission denied")).Once()

		a := export.New(readySource(), clip, nil)
		defer a.Close()

		out := a.CopyRaster(ctx)
		assert.Equal(t, export.Denied, out)
		assert.ErrorIs(t, out.Err(), export.ErrExportDenied)
		assert.Equal(t, export.FeedbackNone, a.Feedback().Kind)
		clip.AssertExpectations(t)
	})
}

func TestActions_CopyVector(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success sets feedback", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteText", ctx, "<svg/>").Return(nil).Once()

		a := export.New(readySource(), clip, nil, export.WithFeedbackTTL(time.Hour))
		defer a.Close()

		assert.Equal(t, export.Done, a.CopyVector(ctx))
		assert.Nil(t, export.Done.Err())
		assert.Equal(t, export.FeedbackCopiedVector, a.Feedback().Kind)
		clip.AssertExpectations(t)
	})

	t.Run("refusal is silent", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteText", ctx, "<svg/>").Return(errors.New("unsupported")).Once()

		a := export.New(readySource(), clip, nil)
		defer a.Close()

		assert.Equal(t, export.Denied, a.CopyVector(ctx))
		assert.Equal(t, export.Feedback{}, a.Feedback())
	})
}

func TestActions_Download(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("raster as png", func(t *testing.T) {
		t.Parallel()
		dl := new(MockDownloader)
		dl.On("Download", ctx, "qrcode.png", mock.MatchedBy(isPNG), qrcode.MediaTypePNG).Return(nil).Once()

		a := export.New(readySource(), nil, dl)
		defer a.Close()

		assert.Equal(t, export.Done, a.DownloadRaster(ctx))
		assert.Equal(t, export.FeedbackNone, a.Feedback().Kind, "downloads never set feedback")
		dl.AssertExpectations(t)
	})

	t.Run("vector as svg", func(t *testing.T) {
		t.Parallel()
		dl := new(MockDownloader)
		dl.On("Download", ctx, "qrcode.svg", []byte("<svg/>"), "image/svg+xml;charset=utf-8").Return(nil).Once()

		a := export.New(readySource(), nil, dl)
		defer a.Close()

		assert.Equal(t, export.Done, a.DownloadVector(ctx))
		dl.AssertExpectations(t)
	})

	t.Run("custom names and ignored failures", func(t *testing.T) {
		t.Parallel()
		dl := new(MockDownloader)
		dl.On("Download", ctx, "code.svg", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		a := export.New(readySource(), nil, dl, export.WithFileNames("code.png", "code.svg"))
		defer a.Close()

		assert.Equal(t, export.Done, a.DownloadVector(ctx))
		dl.AssertExpectations(t)
	})
}

func TestActions_FeedbackExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("resets after ttl", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteText", ctx, mock.Anything).Return(nil)

		a := export.New(readySource(), clip, nil, export.WithFeedbackTTL(30*time.Millisecond))
		defer a.Close()

		sub := a.Subscribe(ctx)
		require.Equal(t, export.Done, a.CopyVector(ctx))
		assert.Equal(t, export.FeedbackCopiedVector, (<-sub.Receive(ctx)).Data.Kind)

		// The scheduled reset is published as an explicit none.
		select {
		case msg := <-sub.Receive(ctx):
			assert.Equal(t, export.FeedbackNone, msg.Data.Kind)
		case <-time.After(2 * time.Second):
			t.Fatal("feedback did not expire")
		}
		assert.Equal(t, export.FeedbackNone, a.Feedback().Kind)
	})

	t.Run("newer copy keeps its own ttl", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteText", ctx, mock.Anything).Return(nil)
		clip.On("WriteImage", ctx, mock.Anything, mock.Anything).Return(nil)

		a := export.New(readySource(), clip, nil, export.WithFeedbackTTL(200*time.Millisecond))
		defer a.Close()

		require.Equal(t, export.Done, a.CopyVector(ctx))
		time.Sleep(120 * time.Millisecond)
		require.Equal(t, export.Done, a.CopyRaster(ctx))
		time.Sleep(120 * time.Millisecond)

		// Past the first copy's ttl, within the second's.
		assert.Equal(t, export.FeedbackCopiedRaster, a.Feedback().Kind)
		assert.Eventually(t, func() bool {
			return a.Feedback().Kind == export.FeedbackNone
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("expired feedback reads as none before the timer fires", func(t *testing.T) {
		t.Parallel()
		clip := new(MockClipboard)
		clip.On("WriteText", ctx, mock.Anything).Return(nil)

		var mu sync.Mutex
		now := time.Now()
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		a := export.New(readySource(), clip, nil, export.WithClock(clock), export.WithFeedbackTTL(time.Hour))
		defer a.Close()

		require.Equal(t, export.Done, a.CopyVector(ctx))
		mu.Lock()
		now = now.Add(2 * time.Hour)
		mu.Unlock()
		assert.Equal(t, export.FeedbackNone, a.Feedback().Kind)
	})
}

func TestOutcomeAndKindStrings(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "done", export.Done.String())
	assert.Equal(t, "denied", export.Denied.String())
	assert.Equal(t, "unavailable", export.Unavailable.String())
	assert.ErrorIs(t, export.Unavailable.Err(), export.ErrUnavailable)
	assert.Equal(t, "copied_raster", export.FeedbackCopiedRaster.String())
	assert.Equal(t, "copied_vector", export.FeedbackCopiedVector.String())
	assert.Equal(t, "none", export.FeedbackNone.String())
}
