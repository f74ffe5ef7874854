package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/qrstudio/pkg/logger"
)

// DefaultDebounce batches the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the full file content after each settled change.
type Handler func(ctx context.Context, content string) error

// Watcher follows a single file and reports its content whenever it changes.
// The parent directory is watched rather than the file itself, so editors
// that save by rename-and-replace keep being followed.
type Watcher struct {
	path     string
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before the file is read.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path. The file does not need to exist yet.
func New(path string, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: DefaultDebounce,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn with the current content (if the file exists) and then after
// every change, until ctx is done. Handler errors are logged and do not stop
// the loop. Run returns nil on context cancellation.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	w.logger.DebugContext(ctx, "watching file", logger.Path(w.path))

	w.deliver(ctx, fn)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.logger.WarnContext(ctx, "watcher error", logger.Error(err))

		case <-timer.C:
			w.deliver(ctx, fn)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

func (w *Watcher) deliver(ctx context.Context, fn Handler) {
	content, err := w.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.WarnContext(ctx, "read failed", logger.Path(w.path), logger.Error(err))
		}
		return
	}
	if err := fn(ctx, content); err != nil {
		w.logger.WarnContext(ctx, "handler failed", logger.Path(w.path), logger.Error(err))
	}
}

func (w *Watcher) read() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFailedToRead, err)
	}
	return string(data), nil
}
