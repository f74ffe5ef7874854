package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
)

const envPrefix = "QRSTUDIO_"

// Config is read from QRSTUDIO_* variables (and .env). Flags override it.
type Config struct {
	Env       string `env:"ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT"`

	DownloadDir       string        `env:"DOWNLOAD_DIR" envDefault:"./downloads"`
	FeedbackTTL       time.Duration `env:"FEEDBACK_TTL" envDefault:"1.2s"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Locale            string        `env:"LOCALE"`
	ClipboardImageURI bool          `env:"CLIPBOARD_IMAGE_DATA_URI"`

	// Used when the download directory is an s3://bucket/prefix location.
	S3Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"S3_SECRET_KEY"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"`
	S3BaseURL        string `env:"S3_BASE_URL"`

	Size       int    `env:"SIZE" envDefault:"320"`
	Level      string `env:"LEVEL" envDefault:"M"`
	Foreground string `env:"FOREGROUND" envDefault:"#111827"`
	Background string `env:"BACKGROUND" envDefault:"#ffffff"`
	QuietZone  int    `env:"QUIET_ZONE" envDefault:"2"`
}

// Validate checks the fields that are parsed again later.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch logger.Format(c.LogFormat) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	if _, err := c.EncodingConfig(); err != nil {
		errs = append(errs, err)
	}
	if location, ok := strings.CutPrefix(c.DownloadDir, "s3://"); ok && strings.SplitN(location, "/", 2)[0] == "" {
		errs = append(errs, fmt.Errorf("download dir %q names no bucket", c.DownloadDir))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// EncodingConfig is the initial configuration of a session. The payload is
// always empty here; it comes from arguments, presets or files.
func (c *Config) EncodingConfig() (qrcode.Config, error) {
	level, err := qrcode.ParseLevel(c.Level)
	if err != nil {
		return qrcode.Config{}, err
	}
	fg, err := qrcode.ParseColor(c.Foreground)
	if err != nil {
		return qrcode.Config{}, fmt.Errorf("foreground: %w", err)
	}
	bg, err := qrcode.ParseColor(c.Background)
	if err != nil {
		return qrcode.Config{}, fmt.Errorf("background: %w", err)
	}
	return settings.Clamp(qrcode.Config{
		Size:       c.Size,
		Level:      level,
		Foreground: fg,
		Background: bg,
		QuietZone:  c.QuietZone,
	}), nil
}
