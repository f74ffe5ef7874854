package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
)

// styleFlags are the appearance flags shared by render and watch.
type styleFlags struct {
	size   int
	level  string
	fg     string
	bg     string
	margin int
	preset string
	dir    string
}

func (f *styleFlags) bind(fs *pflag.FlagSet) {
	fs.IntVar(&f.size, "size", settings.DefaultSize, "image size in pixels (128-1024)")
	fs.StringVarP(&f.level, "level", "l", string(settings.DefaultLevel), "error correction level: L, M, Q or H")
	fs.StringVar(&f.fg, "fg", "", "foreground colour (#rrggbb, #rgb or a CSS name)")
	fs.StringVar(&f.bg, "bg", "", "background colour (#rrggbb, #rgb or a CSS name)")
	fs.IntVar(&f.margin, "margin", settings.DefaultQuietZone, "quiet zone in modules (0-8)")
	fs.StringVar(&f.preset, "preset", "", "YAML preset file applied before the flags")
	fs.StringVarP(&f.dir, "dir", "o", "", "download directory (default $QRSTUDIO_DOWNLOAD_DIR)")
}

// edits turns the preset and the explicitly set flags into store edits,
// preset first so flags win.
func (f *styleFlags) edits(cmd *cobra.Command) ([]settings.Edit, error) {
	var edits []settings.Edit

	if f.preset != "" {
		pf, err := os.Open(f.preset)
		if err != nil {
			return nil, fmt.Errorf("open preset: %w", err)
		}
		defer pf.Close()
		presetEdits, err := settings.LoadPreset(pf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.preset, err)
		}
		edits = append(edits, presetEdits...)
	}

	changed := cmd.Flags().Changed
	if changed("size") {
		edits = append(edits, settings.WithSize(f.size))
	}
	if changed("level") {
		l, err := qrcode.ParseLevel(f.level)
		if err != nil {
			return nil, err
		}
		edits = append(edits, settings.WithLevel(l))
	}
	if changed("fg") {
		c, err := qrcode.ParseColor(f.fg)
		if err != nil {
			return nil, fmt.Errorf("--fg: %w", err)
		}
		edits = append(edits, settings.WithForeground(c))
	}
	if changed("bg") {
		c, err := qrcode.ParseColor(f.bg)
		if err != nil {
			return nil, fmt.Errorf("--bg: %w", err)
		}
		edits = append(edits, settings.WithBackground(c))
	}
	if changed("margin") {
		edits = append(edits, settings.WithQuietZone(f.margin))
	}
	return edits, nil
}

func (f *styleFlags) downloadDir(a *app) string {
	if f.dir != "" {
		return f.dir
	}
	return a.cfg.DownloadDir
}
