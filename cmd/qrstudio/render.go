package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/qrstudio"
	"github.com/dmitrymomot/qrstudio/pkg/export"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
)

var errNothingRendered = errors.New("nothing rendered")

type renderFlags struct {
	style     styleFlags
	sample    bool
	paste     bool
	png       bool
	svg       bool
	copy      string
	dataURI   bool
	stdoutSVG bool
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render text into a QR code and export it",
		Long: `Render joins the arguments into the payload, derives the PNG and SVG
representations and runs the requested exports. Without any export flag
the PNG is downloaded.

Examples:
  qrstudio render "https://example.com" --svg
  qrstudio render --sample --level H --fg navy --copy svg
  qrstudio render --paste --stdout-svg > code.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, f, args)
		},
	}

	fs := cmd.Flags()
	f.style.bind(fs)
	fs.BoolVar(&f.sample, "sample", false, "use "+qrstudio.SamplePayload+" as payload")
	fs.BoolVar(&f.paste, "paste", false, "use the clipboard text as payload")
	fs.BoolVar(&f.png, "png", false, "download the PNG")
	fs.BoolVar(&f.svg, "svg", false, "download the SVG")
	fs.StringVar(&f.copy, "copy", "", "copy to the clipboard: png or svg")
	fs.BoolVar(&f.dataURI, "data-uri", false, "print the PNG as a data URI")
	fs.BoolVar(&f.stdoutSVG, "stdout-svg", false, "print the SVG document")
	cmd.MarkFlagsMutuallyExclusive("sample", "paste")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, f *renderFlags, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch f.copy {
	case "", "png", "svg":
	default:
		return fmt.Errorf("--copy must be png or svg, got %q", f.copy)
	}

	edits, err := f.style.edits(cmd)
	if err != nil {
		return err
	}

	studio, err := a.newStudio(ctx, f.style.downloadDir(a), out)
	if err != nil {
		return err
	}
	defer studio.Close()

	// Style first, then the payload source.
	studio.Update(ctx, edits...)
	switch {
	case f.sample:
		studio.InsertSample(ctx)
	case f.paste:
		if !studio.Paste(ctx) {
			return errors.New("clipboard is empty or unavailable")
		}
	case len(args) > 0:
		studio.Update(ctx, settings.WithPayload(strings.Join(args, " ")))
	}

	if err := a.wait(ctx, studio); err != nil {
		return err
	}

	st := studio.State()
	if st.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Error(st.Err, studio.Config().Config.Level))
		return st.Err
	}
	if st.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Error(qrcode.ErrEmptyContent, studio.Config().Config.Level))
		return errNothingRendered
	}

	if !f.png && !f.svg && f.copy == "" && !f.dataURI && !f.stdoutSVG {
		f.png = true
	}

	if f.png {
		studio.DownloadRaster(ctx)
	}
	if f.svg {
		studio.DownloadVector(ctx)
	}
	if f.stdoutSVG {
		fmt.Fprint(out, st.Vector)
	}
	if f.dataURI {
		data, err := qrcode.EncodePNG(st.Raster)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, qrcode.DataURI(data))
	}
	if f.copy != "" {
		var outcome export.Outcome
		if f.copy == "png" {
			outcome = studio.CopyRaster(ctx)
		} else {
			outcome = studio.CopyVector(ctx)
		}
		if outcome == export.Done {
			fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Feedback(studio.Feedback()))
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Outcome(outcome))
			return outcome.Err()
		}
	}
	return nil
}
