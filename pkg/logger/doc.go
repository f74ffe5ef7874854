// Package logger builds *slog.Logger values for qrstudio.
//
// New takes functional options that pick the output format (text or json),
// the minimum level, static attributes, and ContextExtractor callbacks that
// pull attributes out of context.Context on every record. The pipeline uses
// this to stamp derivation logs with their generation:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "qrstudio"),
//	    logger.WithContextExtractors(pipeline.GenerationAttr),
//	)
//
// Helper constructors in attr.go (Error, Component, Generation, ...) keep
// attribute keys consistent. Error and Errors return an empty Attr for nil
// errors, so they can be passed without a nil check.
package logger
