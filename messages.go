package qrstudio

import (
	"errors"
	"strconv"

	"github.com/dmitrymomot/qrstudio/pkg/clipboard"
	"github.com/dmitrymomot/qrstudio/pkg/export"
	"github.com/dmitrymomot/qrstudio/pkg/i18n"
	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Messages renders user-facing labels in one language.
type Messages struct {
	tr   *i18n.Translator
	lang string
}

// NewMessages binds tr to the best match for the preferred locales.
func NewMessages(tr *i18n.Translator, preferred ...string) *Messages {
	return &Messages{tr: tr, lang: tr.Match(preferred...)}
}

// Lang is the language the messages are rendered in.
func (m *Messages) Lang() string { return m.lang }

// Feedback returns the confirmation text, or "" when nothing is shown.
func (m *Messages) Feedback(f export.Feedback) string {
	switch f.Kind {
	case export.FeedbackCopiedRaster:
		return m.tr.T(m.lang, "feedback.copied_raster")
	case export.FeedbackCopiedVector:
		return m.tr.T(m.lang, "feedback.copied_vector")
	default:
		return ""
	}
}

func (m *Messages) Outcome(o export.Outcome) string {
	return m.tr.T(m.lang, "outcome."+o.String())
}

// Level labels an error-correction level with its recovery percentage.
func (m *Messages) Level(l qrcode.Level) string {
	return m.tr.T(m.lang, "levels."+l.String(), "percent", strconv.Itoa(l.RecoveryPercent()))
}

// PayloadLength labels a character count.
func (m *Messages) PayloadLength(n int) string {
	return m.tr.T(m.lang, "payload.length", "count", strconv.Itoa(n))
}

// Error explains a derivation or export error. level fills the capacity message.
func (m *Messages) Error(err error, level qrcode.Level) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, qrcode.ErrEmptyContent):
		return m.tr.T(m.lang, "errors.empty_content")
	case errors.Is(err, qrcode.ErrCapacityExceeded):
		var derr *pipeline.DerivationError
		if errors.As(err, &derr) && derr.Config.Level != "" {
			level = derr.Config.Level
		}
		return m.tr.T(m.lang, "errors.capacity_exceeded", "level", level.String())
	case errors.Is(err, clipboard.ErrUnsupported):
		return m.tr.T(m.lang, "errors.clipboard_unsupported")
	default:
		return m.tr.T(m.lang, "errors.generation_failed")
	}
}
