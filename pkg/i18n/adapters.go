package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"strings"
)

//go:embed locales/*.yaml
var builtin embed.FS

// TranslationAdapter loads translations keyed by language code.
type TranslationAdapter interface {
	Load(ctx context.Context) (map[string]map[string]any, error)
}

// MapAdapter serves translations from memory.
type MapAdapter struct {
	Data map[string]map[string]any
}

func (a *MapAdapter) Load(_ context.Context) (map[string]map[string]any, error) {
	return a.Data, nil
}

// FSAdapter loads every .yaml/.yml file in dir of fsys. Files for the same
// language are merged at the top level, later files winning.
type FSAdapter struct {
	fsys fs.FS
	dir  string
}

func NewFSAdapter(fsys fs.FS, dir string) *FSAdapter {
	return &FSAdapter{fsys: fsys, dir: dir}
}

// BuiltinAdapter returns the adapter for the catalogs shipped with the binary.
func BuiltinAdapter() *FSAdapter {
	return NewFSAdapter(builtin, "locales")
}

func (a *FSAdapter) Load(ctx context.Context) (map[string]map[string]any, error) {
	entries, err := fs.ReadDir(a.fsys, a.dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadDirectory, err)
	}

	all := make(map[string]map[string]any)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrLoadingCancelled, err)
		}

		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		content, err := fs.ReadFile(a.fsys, path.Join(a.dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFailedToReadFile, name, err)
		}
		parsed, err := parseYAML(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		for lang, trans := range parsed {
			if all[lang] == nil {
				all[lang] = make(map[string]any, len(trans))
			}
			maps.Copy(all[lang], trans)
		}
	}
	return all, nil
}
