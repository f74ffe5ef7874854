package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/settings"
	"github.com/dmitrymomot/qrstudio/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		style    styleFlags
		png, svg bool
	)
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a QR code every time a text file changes",
		Long: `Watch uses the content of a file as the payload and downloads fresh
exports after every save. Trailing newlines are ignored. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			edits, err := style.edits(cmd)
			if err != nil {
				return err
			}
			w, err := watch.New(args[0], watch.WithLogger(a.log.With(logger.Component("watch"))))
			if err != nil {
				return err
			}

			studio, err := a.newStudio(ctx, style.downloadDir(a), out)
			if err != nil {
				return err
			}
			defer studio.Close()
			studio.Update(ctx, edits...)

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", w.Path())
			return w.Run(ctx, func(ctx context.Context, content string) error {
				payload := strings.TrimRight(content, "\r\n")
				studio.Update(ctx, settings.WithPayload(payload))
				if err := a.wait(ctx, studio); err != nil {
					return err
				}

				st := studio.State()
				switch {
				case st.Err != nil:
					fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Error(st.Err, studio.Config().Config.Level))
					return nil
				case st.Empty():
					fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.Error(qrcode.ErrEmptyContent, studio.Config().Config.Level))
					return nil
				}
				fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.PayloadLength(studio.PayloadLength()))
				if png {
					studio.DownloadRaster(ctx)
				}
				if svg {
					studio.DownloadVector(ctx)
				}
				return nil
			})
		},
	}

	fs := cmd.Flags()
	style.bind(fs)
	fs.BoolVar(&png, "png", true, "download the PNG after each change")
	fs.BoolVar(&svg, "svg", true, "download the SVG after each change")
	return cmd
}
