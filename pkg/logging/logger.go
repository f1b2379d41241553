// Package logging provides structured logging for catalogsync using zerolog.
// Refresh cycles never hold a stateful child logger; instead the provider
// name, task id and correlation id travel in the context.Context and every
// function pulls its logger back out with FromContext.
//
// Example usage:
//
//	ctx = logging.WithProvider(ctx, "RDSEntityProvider:east")
//	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
//	logging.FromContext(ctx).Info().Int("instances", 42).Msg("Retrieved instances")
package logging

import (
	"os"

	goisatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables consulted for the default logger.
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvDebug     = "DEBUG"
)

// defaultLogger is used whenever a context carries no logger.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// envConfig builds the default configuration from the environment. The CLI
// replaces the default logger once flags are parsed.
func envConfig() *Config {
	cfg := DefaultConfig()
	switch {
	case os.Getenv(EnvLogLevel) != "":
		cfg.Level = os.Getenv(EnvLogLevel)
	case os.Getenv(EnvDebug) != "":
		cfg.Level = "debug"
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// isatty checks if stderr is a terminal.
func isatty() bool {
	fd := os.Stderr.Fd()
	return goisatty.IsTerminal(fd) || goisatty.IsCygwinTerminal(fd)
}
