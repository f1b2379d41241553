// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/catalogsync/app implements this interface.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Interface interface {
	// Viper returns the loaded configuration, reading it on first use.
	Viper() (*viper.Viper, error)

	// NewClient resolves providers from the configuration into a new client.
	// Configuration errors are returned and are fatal for the command.
	NewClient(ctx context.Context, opts ...catalogsync.Option) (catalogsync.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
