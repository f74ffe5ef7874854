package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxCopies bounds the " (n)" suffix search.
const maxCopies = 1000

// LocalStorage saves downloads into a local directory.
// All files are written inside baseDir; existing files are never overwritten.
type LocalStorage struct {
	baseDir  string // Absolute path - all files stored within this directory
	fileMode os.FileMode
}

// LocalOption defines a function that configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithFileMode sets the permissions of created files (default 0644).
func WithFileMode(mode os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// NewLocalStorage creates a downloads directory storage.
// baseDir is resolved to an absolute path and created if it doesn't exist.
func NewLocalStorage(baseDir string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	// Must resolve to absolute path for security - prevents relative path confusion
	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	s := &LocalStorage{
		baseDir:  absBaseDir,
		fileMode: 0644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseDir returns the absolute downloads directory.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Download implements the download trigger used by the export actions.
func (s *LocalStorage) Download(ctx context.Context, name string, data []byte, mediaType string) error {
	_, err := s.Save(ctx, name, data, mediaType)
	return err
}

// Save writes data under a sanitized name. When the name is taken it picks
// "name (1).ext", "name (2).ext" and so on, the way browsers do. A name
// without extension gets the one matching mediaType.
func (s *LocalStorage) Save(ctx context.Context, name string, data []byte, mediaType string) (*File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(data) == 0 {
		return nil, ErrEmptyContent
	}

	name = SanitizeFilename(name)
	if filepath.Ext(name) == "" {
		name += ExtensionFor(mediaType)
	}

	for n := range maxCopies {
		candidate := candidateName(name, n)
		absPath, err := s.resolvePath(candidate)
		if err != nil {
			return nil, err
		}

		// O_EXCL makes the existence check and the creation one step.
		dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
		}

		written, writeErr := dst.Write(data)
		closeErr := dst.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(absPath) // Clean up partial file
			return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
		}

		return &File{
			Filename:     candidate,
			Size:         int64(written),
			MIMEType:     mediaType,
			Extension:    filepath.Ext(candidate),
			AbsolutePath: absPath,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrTooManyCopies, name)
}

// resolvePath confines a file name to baseDir.
func (s *LocalStorage) resolvePath(name string) (string, error) {
	absPath := filepath.Join(s.baseDir, name)
	rel, err := filepath.Rel(s.baseDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	return absPath, nil
}
