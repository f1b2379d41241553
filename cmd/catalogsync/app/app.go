// Package app provides the application context and dependency management
// for the catalogsync CLI. It centralizes configuration, logging and the
// lifecycle of every client a command creates.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/config"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the catalogsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu      sync.Mutex
	viper   *viper.Viper
	clients []catalogsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		config:  LoadConfig(),
	}

	logger := NewLogger(app.config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag value.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Viper loads the configuration on first use and returns it.
func (a *App) Viper() (*viper.Viper, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.viper != nil {
		return a.viper, nil
	}

	var opts []config.Option
	if a.config.ConfigFile != "" {
		opts = append(opts, config.WithFile(a.config.ConfigFile))
	}
	v, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		a.logger.Debug().Str("file", used).Msg("Loaded configuration")
	}
	a.viper = v
	return v, nil
}

// NewClient resolves every configured provider into a new client. The app
// closes it on Shutdown.
func (a *App) NewClient(ctx context.Context, opts ...catalogsync.Option) (catalogsync.Client, error) {
	v, err := a.Viper()
	if err != nil {
		return nil, err
	}

	client, err := catalogsync.New(logging.WithLogger(ctx, a.logger), v, opts...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()
	return client, nil
}

// Shutdown stops the schedulers of every client the app created.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.clients = nil
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, c := range clients {
			c.Close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WrapResource("shutdown", "clients", "", ctx.Err())
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithViper sets a pre-loaded configuration (useful for testing).
func WithViper(v *viper.Viper) Option {
	return func(a *App) error {
		a.viper = v
		return nil
	}
}
