package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/config"
)

// NewLogger creates a structured zerolog.Logger with service context
// fields from the config and the configured level.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if cfg.EnvPrefix != "" {
		ctx = ctx.Str("env_prefix", cfg.EnvPrefix)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
