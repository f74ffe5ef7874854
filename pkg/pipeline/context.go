package pipeline

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/qrstudio/pkg/logger"
)

type generationKey struct{}

func withGeneration(ctx context.Context, gen uint64) context.Context {
	return context.WithValue(ctx, generationKey{}, gen)
}

// GenerationFromContext returns the generation token of the derivation that
// ctx belongs to.
func GenerationFromContext(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	gen, ok := ctx.Value(generationKey{}).(uint64)
	return gen, ok
}

// GenerationAttr is a logger context extractor adding the "generation"
// attribute to records logged from inside a derivation.
func GenerationAttr(ctx context.Context) (slog.Attr, bool) {
	gen, ok := GenerationFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.Generation(gen), true
}
