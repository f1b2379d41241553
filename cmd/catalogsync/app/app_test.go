package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", append([]Option{WithLogger(&logger)}, opts...)...)
	require.NoError(t, err)
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Viper_LoadsConfigFileOnce verifies the configuration is read once.
func TestApp_Viper_LoadsConfigFileOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  refresh:\n    interval: 5m\n"), 0o600))

	app := newTestApp(t, WithConfig(&Config{ConfigFile: path}))

	const goroutines = 20
	var wg sync.WaitGroup
	results := make([]*viper.Viper, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := app.Viper()
			assert.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		if v != results[0] {
			t.Errorf("Goroutine %d got a different configuration instance", i)
		}
	}
	assert.Equal(t, "5m", results[0].GetString("catalog.refresh.interval"))
	assert.Equal(t, path, results[0].ConfigFileUsed())
}

// TestApp_Viper_MissingFile verifies an explicit missing file is a config error.
func TestApp_Viper_MissingFile(t *testing.T) {
	app := newTestApp(t, WithConfig(&Config{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := app.Viper()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

// TestApp_NewClient verifies clients are built from configuration and closed on shutdown.
func TestApp_NewClient(t *testing.T) {
	v := viper.New()
	v.Set("catalog.providers.okta.prod.url", "https://example.okta.com")
	v.Set("catalog.providers.okta.prod.apiToken", "token")
	app := newTestApp(t, WithViper(v))

	noop := refresh.SchedulerFunc(func(context.Context, refresh.Task) error { return nil })
	client, err := app.NewClient(context.Background(), catalogsync.WithScheduler(noop))
	require.NoError(t, err)
	assert.Equal(t, []string{"OktaOrgDiscoveryEntityProvider:prod"}, client.Providers())

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Empty(t, app.clients)
}

// TestApp_NewClient_ConfigError verifies configuration errors are returned.
func TestApp_NewClient_ConfigError(t *testing.T) {
	v := viper.New()
	v.Set("catalog.providers.okta.prod.url", "https://example.okta.com")
	app := newTestApp(t, WithViper(v))

	_, err := app.NewClient(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Empty(t, app.clients)
}

// TestApp_Execute_Version verifies the root command wiring.
func TestApp_Execute_Version(t *testing.T) {
	app := newTestApp(t)
	root := app.createRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.True(t, strings.HasPrefix(out.String(), "catalogsync version 1.0.0\n"))
	assert.Contains(t, out.String(), "commit: abc123")
}

// TestApp_Execute_RegistersCommands verifies every subcommand is reachable.
func TestApp_Execute_RegistersCommands(t *testing.T) {
	root := newTestApp(t).createRootCommand()

	for _, name := range []string{"run", "refresh", "providers", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

// TestApp_EnvironmentSurvivesFlagParsing verifies LOG_LEVEL is not reset by flag defaults.
func TestApp_EnvironmentSurvivesFlagParsing(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	require.NoError(t, err)

	root := app.createRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "error", app.Config().LogLevel)
	assert.Equal(t, zerolog.ErrorLevel, app.Logger().GetLevel())
}
