package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/qrstudio"
	"github.com/dmitrymomot/qrstudio/pkg/clipboard"
	"github.com/dmitrymomot/qrstudio/pkg/config"
	"github.com/dmitrymomot/qrstudio/pkg/file"
	"github.com/dmitrymomot/qrstudio/pkg/i18n"
	"github.com/dmitrymomot/qrstudio/pkg/logger"
	"github.com/dmitrymomot/qrstudio/pkg/pipeline"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

const serviceName = "qrstudio"

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg  Config
	log  *slog.Logger
	msgs *qrstudio.Messages
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:   "qrstudio",
		Short: "Render text into QR codes as PNG and SVG",
		Long: `qrstudio turns text into a QR code and exports it as a PNG image or an
SVG document, to files or to the clipboard.

Defaults come from QRSTUDIO_* environment variables (or a .env file):
SIZE, LEVEL, FOREGROUND, BACKGROUND, QUIET_ZONE, DOWNLOAD_DIR, LOCALE,
FEEDBACK_TTL, TIMEOUT, LOG_LEVEL, LOG_FORMAT, ENV.

Everything stays on this machine by default. Uploading is opt-in: only a
download directory of the form s3://bucket/prefix sends files over the
network, publishing them to S3 using S3_REGION, S3_ENDPOINT,
S3_ACCESS_KEY_ID, S3_SECRET_KEY, S3_FORCE_PATH_STYLE and S3_BASE_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(&a.cfg, config.WithPrefix(envPrefix)); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			return a.init(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRenderCmd(a),
		newWatchCmd(a),
		newLevelsCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context, logOut io.Writer) error {
	level, err := logger.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	opts := []logger.Option{
		logger.WithEnvironment(a.cfg.Env, serviceName),
		logger.WithLevel(level),
		logger.WithOutput(logOut),
		logger.WithContextExtractors(pipeline.GenerationAttr),
	}
	if a.cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(a.cfg.LogFormat)))
	}
	a.log = logger.New(opts...)

	tr, err := i18n.NewTranslator(ctx, i18n.BuiltinAdapter(),
		i18n.WithLogger(a.log.With(logger.Component("i18n"))),
		i18n.WithMissingTranslationsLogging(true),
	)
	if err != nil {
		return err
	}
	a.msgs = qrstudio.NewMessages(tr, a.cfg.Locale, os.Getenv("LC_ALL"), os.Getenv("LANG"))
	return nil
}

// newStudio opens a session writing downloads into dir and printing the
// location of every saved file to out.
func (a *app) newStudio(ctx context.Context, dir string, out io.Writer) (*qrstudio.Studio, error) {
	initial, err := a.cfg.EncodingConfig()
	if err != nil {
		return nil, err
	}
	store, err := a.openStorage(ctx, dir)
	if err != nil {
		return nil, err
	}

	var clipOpts []clipboard.Option
	if a.cfg.ClipboardImageURI {
		clipOpts = append(clipOpts, clipboard.WithImageAsDataURI())
	}

	return qrstudio.New(
		qrcode.NewGenerator(),
		clipboard.New(clipOpts...),
		&savingDownloader{store: store, out: out},
		qrstudio.WithLogger(a.log),
		qrstudio.WithInitialConfig(initial),
		qrstudio.WithFeedbackTTL(a.cfg.FeedbackTTL),
	), nil
}

// openStorage picks the download target: a bucket for s3:// locations,
// a local directory otherwise.
func (a *app) openStorage(ctx context.Context, dir string) (saver, error) {
	location, ok := strings.CutPrefix(dir, "s3://")
	if !ok {
		local, err := file.NewLocalStorage(dir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	bucket, prefix, _ := strings.Cut(location, "/")
	remote, err := file.NewS3Storage(ctx, file.S3Config{
		Bucket:         bucket,
		Prefix:         prefix,
		Region:         a.cfg.S3Region,
		AccessKeyID:    a.cfg.S3AccessKeyID,
		SecretKey:      a.cfg.S3SecretKey,
		Endpoint:       a.cfg.S3Endpoint,
		BaseURL:        a.cfg.S3BaseURL,
		ForcePathStyle: a.cfg.S3ForcePathStyle,
	}, file.WithS3UploadTimeout(a.cfg.Timeout))
	if err != nil {
		return nil, err
	}
	return remote, nil
}

// wait blocks until the session settles or the configured timeout passes.
func (a *app) wait(ctx context.Context, s *qrstudio.Studio) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return s.Wait(ctx)
}

type saver interface {
	Save(ctx context.Context, name string, data []byte, mediaType string) (*file.File, error)
}

// savingDownloader reports where each download landed.
type savingDownloader struct {
	store saver
	out   io.Writer
}

func (d *savingDownloader) Download(ctx context.Context, name string, data []byte, mediaType string) error {
	f, err := d.store.Save(ctx, name, data, mediaType)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(d.out, f.Location())
	return err
}
