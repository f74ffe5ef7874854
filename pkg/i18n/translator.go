package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/qrstudio/pkg/logger"
)

// DefaultLanguage is used when no supported language matches.
const DefaultLanguage = "en"

// Translator resolves dot-separated keys against per-language catalogs.
type Translator struct {
	mu           sync.RWMutex
	translations map[string]map[string]any
	langs        []string
	matcher      language.Matcher

	defaultLang    string
	fallbackToKey  bool
	missingLogMode bool
	logger         *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithDefaultLanguage sets the language used when matching fails.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey controls whether a missing key is returned as is (default true)
// or as an empty string.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) { t.fallbackToKey = fallback }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMissingTranslationsLogging logs a warning for every missing key.
func WithMissingTranslationsLogging(log bool) Option {
	return func(t *Translator) { t.missingLogMode = log }
}

// NewTranslator loads translations from adapter.
func NewTranslator(ctx context.Context, adapter TranslationAdapter, opts ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	translations, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	for lang, trans := range translations {
		if lang == "" {
			return nil, fmt.Errorf("empty language code found")
		}
		if trans == nil {
			return nil, fmt.Errorf("nil translations map for language: %s", lang)
		}
	}

	t.translations = translations
	t.langs = sortedLanguages(translations, t.defaultLang)
	t.matcher = newMatcher(t.langs)

	t.logger.DebugContext(ctx, "translations loaded", slog.Any("languages", t.langs))
	return t, nil
}

// sortedLanguages puts the default language first so the matcher falls back to it.
func sortedLanguages(trans map[string]map[string]any, def string) []string {
	langs := make([]string, 0, len(trans))
	for lang := range trans {
		if lang != def {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	if _, ok := trans[def]; ok {
		langs = append([]string{def}, langs...)
	}
	return langs
}

func newMatcher(langs []string) language.Matcher {
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, language.Make(l))
	}
	return language.NewMatcher(tags)
}

// SupportedLanguages returns the loaded language codes, default language first.
func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.langs)
}

// Match picks the best supported language for the given preferences. Each
// preference may be a BCP 47 tag ("ja-JP"), a POSIX locale ("ja_JP.UTF-8")
// or an Accept-Language list ("fr-CH, ja;q=0.8").
func (t *Translator) Match(preferred ...string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.langs) == 0 {
		return t.defaultLang
	}

	var tags []language.Tag
	for _, p := range preferred {
		p = normalizeLocale(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return t.defaultLang
	}

	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.langs[idx]
}

// normalizeLocale turns "ja_JP.UTF-8" into "ja-JP". The codeset and modifier
// are stripped per list element, so weights such as ";q=0.8" stay intact.
// "C" and "POSIX" mean no preference.
func normalizeLocale(s string) string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, part := range parts {
		tag, params, hasParams := strings.Cut(strings.TrimSpace(part), ";")
		if i := strings.IndexAny(tag, ".@"); i >= 0 {
			tag = tag[:i]
		}
		tag = strings.TrimSpace(tag)
		if tag == "" || tag == "C" || tag == "POSIX" {
			continue
		}
		tag = strings.ReplaceAll(tag, "_", "-")
		if hasParams {
			tag += ";" + params
		}
		out = append(out, tag)
	}
	return strings.Join(out, ", ")
}

// HasTranslation checks if a translation exists for the given language and key.
func (t *Translator) HasTranslation(lang, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langMap, ok := t.translations[lang]
	if !ok {
		return false
	}
	_, ok = lookup(langMap, key)
	return ok
}

// T translates key for lang, substituting %{name} placeholders from args
// given as name, value pairs.
//
//	tr.T("en", "levels.M", "percent", "15") // "M (~15% recovery)"
func (t *Translator) T(lang, key string, args ...string) string {
	if s, ok := t.translate(lang, key); ok {
		return namedSprintf(s, args)
	}
	if t.fallbackToKey {
		return namedSprintf(key, args)
	}
	return ""
}

// Td is like T but falls back to defaultValue instead of the key.
func (t *Translator) Td(lang, key, defaultValue string, args ...string) string {
	if s, ok := t.translate(lang, key); ok {
		return namedSprintf(s, args)
	}
	return namedSprintf(defaultValue, args)
}

// Tc translates using the locale stored in ctx.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	return t.T(GetLocale(ctx), key, args...)
}

func (t *Translator) translate(lang, key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langMap, ok := t.translations[lang]
	if !ok {
		if t.missingLogMode {
			t.logger.Warn("language not supported", slog.String("lang", lang), slog.String("key", key))
		}
		return "", false
	}

	val, ok := lookup(langMap, key)
	if !ok {
		if t.missingLogMode {
			t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
		}
		return "", false
	}

	s, ok := val.(string)
	if !ok {
		if t.missingLogMode {
			t.logger.Warn("translation is not a string",
				slog.String("lang", lang),
				slog.String("key", key),
				slog.String("type", fmt.Sprintf("%T", val)),
			)
		}
		return "", false
	}
	return s, true
}

// lookup traverses a nested map using dot-separated keys.
func lookup(m map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	current := m
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		current, ok = val.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// namedSprintf replaces %{name} placeholders. Unknown names are left as is.
func namedSprintf(tmpl string, args []string) string {
	if len(args) < 2 {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		params[args[i]] = args[i+1]
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}
