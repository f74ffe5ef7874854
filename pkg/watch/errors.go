package watch

import "errors"

var (
	ErrInvalidPath   = errors.New("watch: invalid path")
	ErrWatcherFailed = errors.New("watch: failed to start watcher")
	ErrWatcherClosed = errors.New("watch: watcher closed")
	ErrFailedToRead  = errors.New("watch: failed to read file")
)
