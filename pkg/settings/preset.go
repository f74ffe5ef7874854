package settings

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// preset mirrors the YAML document; nil fields are absent keys.
type preset struct {
	Payload    *string `yaml:"payload"`
	Size       *int    `yaml:"size"`
	Level      *string `yaml:"level"`
	Foreground *string `yaml:"foreground"`
	Background *string `yaml:"background"`
	QuietZone  *int    `yaml:"quiet_zone"`
}

// LoadPreset decodes a YAML preset into edits. Only keys present in the
// document produce edits, so a preset can change a single field:
//
//	level: H
//	foreground: "#0f172a"
//	quiet_zone: 4
func LoadPreset(r io.Reader) ([]Edit, error) {
	var p preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Join(ErrInvalidPreset, err)
	}

	var edits []Edit
	if p.Payload != nil {
		edits = append(edits, WithPayload(*p.Payload))
	}
	if p.Size != nil {
		edits = append(edits, WithSize(*p.Size))
	}
	if p.Level != nil {
		l, err := qrcode.ParseLevel(*p.Level)
		if err != nil {
			return nil, errors.Join(ErrInvalidPreset, err)
		}
		edits = append(edits, WithLevel(l))
	}
	if p.Foreground != nil {
		c, err := qrcode.ParseColor(*p.Foreground)
		if err != nil {
			return nil, errors.Join(ErrInvalidPreset, fmt.Errorf("foreground: %w", err))
		}
		edits = append(edits, WithForeground(c))
	}
	if p.Background != nil {
		c, err := qrcode.ParseColor(*p.Background)
		if err != nil {
			return nil, errors.Join(ErrInvalidPreset, fmt.Errorf("background: %w", err))
		}
		edits = append(edits, WithBackground(c))
	}
	if p.QuietZone != nil {
		edits = append(edits, WithQuietZone(*p.QuietZone))
	}
	return edits, nil
}
