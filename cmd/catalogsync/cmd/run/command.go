// Package run provides the run command, the long-running process that
// refreshes every provider on its schedule and serves the ops API.
package run

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/catalogs"
	"github.com/agentstation/catalogsync/internal/catalogs/files"
	"github.com/agentstation/catalogsync/internal/catalogs/memory"
	"github.com/agentstation/catalogsync/internal/observability"
	"github.com/agentstation/catalogsync/internal/server"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

// Environment variables read by the run command.
const (
	EnvAPIKey = "CATALOGSYNC_API_KEY"
	EnvHost   = "HTTP_HOST"
	EnvPort   = "HTTP_PORT"
)

// Flags holds the run command flags.
type Flags struct {
	Sink     string
	Out      string
	NoServer bool

	Host       string
	Port       int
	Prefix     string
	Auth       bool
	AuthHeader string
	Metrics    bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewCommand creates the run command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Refresh providers on a schedule and serve the ops API",
		Long: `Run connects every configured provider to the selected catalog sink and
refreshes each one on the configured interval until interrupted.

Every cycle replaces the provider's previous snapshot in full. A provider
whose cycle fails keeps its previous snapshot and is retried on the next tick.

The ops API exposes health, readiness, per-provider status, on-demand
refresh and Prometheus metrics.`,
		Example: `  # Refresh into ./catalog and serve on localhost:9090
  catalogsync run

  # Keep snapshots in memory only, without the ops API
  catalogsync run --sink memory --no-server

  # Require an API key for on-demand refreshes
  CATALOGSYNC_API_KEY=secret catalogsync run --auth --host 0.0.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Sink, "sink", string(catalogs.Files), "catalog sink: files, memory")
	cmd.Flags().StringVar(&flags.Out, "out", "./catalog", "snapshot directory for the files sink")
	cmd.Flags().BoolVar(&flags.NoServer, "no-server", false, "do not start the ops API server")

	cmd.Flags().StringVar(&flags.Host, "host", defaults.Host, "ops API bind address")
	cmd.Flags().IntVarP(&flags.Port, "port", "p", defaults.Port, "ops API port")
	cmd.Flags().StringVar(&flags.Prefix, "prefix", defaults.PathPrefix, "ops API path prefix")
	cmd.Flags().BoolVar(&flags.Auth, "auth", false, "require an API key for refresh requests (key from "+EnvAPIKey+")")
	cmd.Flags().StringVar(&flags.AuthHeader, "auth-header", defaults.AuthHeader, "authentication header name")
	cmd.Flags().BoolVar(&flags.Metrics, "metrics", defaults.MetricsEnabled, "enable the /metrics endpoint")

	cmd.Flags().DurationVar(&flags.ReadTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&flags.WriteTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().DurationVar(&flags.IdleTimeout, "idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

func run(ctx context.Context, app appcontext.Interface, flags *Flags) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	connector, err := newConnector(flags)
	if err != nil {
		return err
	}

	var serverConfig server.Config
	if !flags.NoServer {
		serverConfig, err = flags.serverConfig()
		if err != nil {
			return err
		}
	}

	client, err := app.NewClient(ctx, catalogsync.WithRecorder(observability.NewRecorder()))
	if err != nil {
		return err
	}
	defer client.Close()

	client.OnRefreshFailed(func(status refresh.Status) {
		if status.ConsecutiveFailures > 1 {
			logger.Error().
				Str(logging.FieldProvider, status.Provider).
				Int("consecutive_failures", status.ConsecutiveFailures).
				Msg("Provider keeps failing, previous snapshot retained")
		}
	})

	if err := client.Connect(ctx, connector); err != nil {
		return err
	}

	logger.Info().
		Strs("providers", client.Providers()).
		Str("sink", flags.Sink).
		Msg("Scheduled provider refreshes")

	if flags.NoServer {
		<-ctx.Done()
		logger.Info().Msg("Stopping")
		return nil
	}

	logger.Info().
		Str("addr", serverConfig.Addr()).
		Str("prefix", serverConfig.PathPrefix).
		Bool("auth", serverConfig.AuthEnabled).
		Bool("metrics", serverConfig.MetricsEnabled).
		Msg("Starting ops server")

	return server.New(client, serverConfig, logger).ListenAndServe(ctx)
}

// newConnector builds the catalog sink selected by --sink.
func newConnector(flags *Flags) (catalog.Connector, error) {
	sink, err := catalogs.Parse(flags.Sink)
	if err != nil {
		return nil, err
	}
	switch sink {
	case catalogs.Files:
		snapshots, err := files.NewCatalog(flags.Out)
		if err != nil {
			return nil, err
		}
		return snapshots, nil
	default:
		return memory.NewCatalog(), nil
	}
}

// serverConfig builds the ops server configuration, with HTTP_HOST and
// HTTP_PORT overriding the flags.
func (f *Flags) serverConfig() (server.Config, error) {
	cfg := server.DefaultConfig()
	cfg.Host = f.Host
	cfg.Port = f.Port
	cfg.PathPrefix = f.Prefix
	cfg.AuthEnabled = f.Auth
	cfg.AuthHeader = f.AuthHeader
	cfg.MetricsEnabled = f.Metrics
	cfg.ReadTimeout = f.ReadTimeout
	cfg.WriteTimeout = f.WriteTimeout
	cfg.IdleTimeout = f.IdleTimeout

	if host := os.Getenv(EnvHost); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 0 || p > 65535 {
			return server.Config{}, errors.NewConfigError(EnvPort, "invalid port "+port, err)
		}
		cfg.Port = p
	}

	if cfg.AuthEnabled {
		cfg.APIKey = os.Getenv(EnvAPIKey)
		if cfg.APIKey == "" {
			return server.Config{}, errors.MissingConfig(EnvAPIKey)
		}
	}
	return cfg, nil
}
