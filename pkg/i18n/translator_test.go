package i18n_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/pkg/i18n"
)

func builtin(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(context.Background(), i18n.BuiltinAdapter())
	require.NoError(t, err)
	return tr
}

func TestBuiltinCatalogs(t *testing.T) {
	t.Parallel()
	tr := builtin(t)

	assert.Equal(t, []string{"en", "ja"}, tr.SupportedLanguages())

	keys := []string{
		"actions.copy_raster", "actions.copy_vector",
		"actions.download_raster", "actions.download_vector",
		"actions.paste", "actions.sample",
		"feedback.copied_raster", "feedback.copied_vector",
		"outcome.done", "outcome.denied", "outcome.unavailable",
		"levels.L", "levels.M", "levels.Q", "levels.H",
		"payload.length",
		"errors.empty_content", "errors.capacity_exceeded", "errors.generation_failed",
		"errors.clipboard_unsupported", "errors.download_failed",
	}
	for _, lang := range tr.SupportedLanguages() {
		for _, key := range keys {
			assert.True(t, tr.HasTranslation(lang, key), "%s: %s", lang, key)
		}
	}
}

func TestTranslator_T(t *testing.T) {
	t.Parallel()
	tr := builtin(t)

	assert.Equal(t, "M (~15% recovery)", tr.T("en", "levels.M", "percent", "15"))
	assert.Equal(t, "Copied PNG!", tr.T("en", "feedback.copied_raster"))
	assert.Equal(t, "PNGをコピーしました", tr.T("ja", "feedback.copied_raster"))
	assert.Equal(t, "12文字", tr.T("ja", "payload.length", "count", "12"))

	t.Run("missing key falls back to key", func(t *testing.T) {
		assert.Equal(t, "nope.missing", tr.T("en", "nope.missing"))
		assert.Equal(t, "feedback.copied_raster", tr.T("xx", "feedback.copied_raster"))
	})

	t.Run("non-string node", func(t *testing.T) {
		assert.Equal(t, "feedback", tr.T("en", "feedback"))
	})

	t.Run("default value", func(t *testing.T) {
		assert.Equal(t, "fallback 3", tr.Td("en", "nope", "fallback %{n}", "n", "3"))
	})

	t.Run("context locale", func(t *testing.T) {
		ctx := i18n.SetLocale(context.Background(), "ja")
		assert.Equal(t, "完了", tr.Tc(ctx, "outcome.done"))
		assert.Equal(t, "Done", tr.Tc(context.Background(), "outcome.done"))
	})
}

func TestTranslator_NoFallback(t *testing.T) {
	t.Parallel()
	tr, err := i18n.NewTranslator(context.Background(),
		&i18n.MapAdapter{Data: map[string]map[string]any{"en": {"a": "b"}}},
		i18n.WithFallbackToKey(false),
	)
	require.NoError(t, err)
	assert.Equal(t, "b", tr.T("en", "a"))
	assert.Empty(t, tr.T("en", "missing"))
}

func TestTranslator_Match(t *testing.T) {
	t.Parallel()
	tr := builtin(t)

	tests := []struct {
		in   []string
		want string
	}{
		{nil, "en"},
		{[]string{""}, "en"},
		{[]string{"C"}, "en"},
		{[]string{"ja"}, "ja"},
		{[]string{"ja_JP.UTF-8"}, "ja"},
		{[]string{"en-GB"}, "en"},
		{[]string{"fr-CH, ja;q=0.8"}, "ja"},
		{[]string{"en;q=0.5, ja;q=0.9"}, "ja"},
		{[]string{"ja_JP.UTF-8, en;q=0.1"}, "ja"},
		{[]string{"de_DE.UTF-8@euro"}, "en"},
		{[]string{"C, ja;q=0.3"}, "ja"},
		{[]string{"de"}, "en"},
		{[]string{"", "ja-JP"}, "ja"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Match(tt.in...), "%v", tt.in)
	}
}

func TestFSAdapter(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"tr/a.yaml":    {Data: []byte("en:\n  hello: \"Hello\"\n")},
		"tr/b.yml":     {Data: []byte("en:\n  bye: \"Bye\"\nde:\n  hello: \"Hallo\"\n")},
		"tr/notes.txt": {Data: []byte("ignored")},
	}

	tr, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(fsys, "tr"))
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de"}, tr.SupportedLanguages())
	assert.Equal(t, "Hello", tr.T("en", "hello"))
	assert.Equal(t, "Bye", tr.T("en", "bye"))
	assert.Equal(t, "de", tr.Match("de-AT"))

	t.Run("invalid yaml", func(t *testing.T) {
		bad := fstest.MapFS{"tr/x.yaml": {Data: []byte("en: [1, 2")}}
		_, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(bad, "tr"))
		assert.ErrorIs(t, err, i18n.ErrFailedToParseYAML)
	})

	t.Run("language is not a map", func(t *testing.T) {
		bad := fstest.MapFS{"tr/x.yaml": {Data: []byte("en: hello\n")}}
		_, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(bad, "tr"))
		assert.ErrorIs(t, err, i18n.ErrFailedToParseYAML)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(fstest.MapFS{}, "nope"))
		assert.ErrorIs(t, err, i18n.ErrFailedToReadDirectory)
	})

	t.Run("nil adapter", func(t *testing.T) {
		_, err := i18n.NewTranslator(context.Background(), nil)
		assert.ErrorIs(t, err, i18n.ErrNilAdapter)
	})
}
