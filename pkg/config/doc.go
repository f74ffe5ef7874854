// Package config loads qrstudio settings from the environment.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is read once per process (if present), then Load parses
// the environment into any struct annotated with `env` tags. Options add a
// variable prefix, extra .env files, or an explicit variable map for tests.
//
//	type Config struct {
//		Env      string        `env:"ENV" envDefault:"development"`
//		TTL      time.Duration `env:"FEEDBACK_TTL" envDefault:"1.2s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithPrefix("QRSTUDIO_")); err != nil {
//		return err
//	}
//
// Structs implementing Validator are checked after parsing. MustLoad panics
// instead of returning an error.
package config
