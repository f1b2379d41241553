package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/catalogs/files"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

func staticEngine(t *testing.T, ids ...string) *reconciler.Engine {
	t.Helper()
	e, err := reconciler.New(provider.NewIdentity("StaticProvider", "east"),
		reconciler.WithCollection(&reconciler.Collection[string]{
			Name: "items",
			Source: reconciler.SourceFuncs[string]{
				FetchFunc:    func(context.Context) ([]string, error) { return ids, nil },
				IdentifyFunc: func(id string) string { return id },
			},
			VendorAnnotation: "example.com/id",
			Transform: func(_ context.Context, id string) (catalog.Entity, error) {
				return catalog.Entity{Kind: "Resource", Metadata: catalog.Metadata{Name: id}}, nil
			},
		}),
	)
	require.NoError(t, err)
	return e
}

// immediate runs each registered task once in the background.
var immediate = refresh.SchedulerFunc(func(ctx context.Context, task refresh.Task) error {
	go task.Fn(ctx)
	return nil
})

func mockApp(engines ...*reconciler.Engine) *appcontext.Mock {
	return &appcontext.Mock{
		NewClientFunc: func(ctx context.Context, opts ...catalogsync.Option) (catalogsync.Client, error) {
			opts = append(opts, catalogsync.WithEngines(engines...), catalogsync.WithScheduler(immediate))
			return catalogsync.New(ctx, nil, opts...)
		},
	}
}

// start runs the command until the returned cancel func is called.
func start(t *testing.T, app appcontext.Interface, args ...string) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("command did not stop")
		return nil
	}
}

func TestRunWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	cancel, done := start(t, mockApp(staticEngine(t, "a", "b")), "--out", dir, "--no-server")

	snapshot := filepath.Join(dir, "StaticProvider_east.yaml")
	require.Eventually(t, func() bool {
		_, err := os.Stat(snapshot)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, wait(t, done))

	snapshots, err := files.NewCatalog(dir)
	require.NoError(t, err)
	doc, err := snapshots.Load("StaticProvider:east")
	require.NoError(t, err)
	assert.Len(t, doc.Entities, 2)
}

func TestRunWithServer(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvPort, "")

	cancel, done := start(t, mockApp(staticEngine(t, "a")), "--sink", "memory", "--port", "0", "--metrics=false")

	// Give the listener a moment; shutdown must still be clean
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, wait(t, done))
}

func TestRunValidation(t *testing.T) {
	t.Run("unknown sink", func(t *testing.T) {
		_, done := start(t, mockApp(), "--sink", "postgres", "--no-server")
		err := wait(t, done)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("auth without key", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		_, done := start(t, mockApp(), "--sink", "memory", "--auth")
		err := wait(t, done)
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})

	t.Run("client error", func(t *testing.T) {
		app := &appcontext.Mock{
			NewClientFunc: func(context.Context, ...catalogsync.Option) (catalogsync.Client, error) {
				return nil, errors.MissingConfig("catalog.providers.aws.east.region")
			},
		}
		_, done := start(t, app, "--sink", "memory", "--no-server")
		err := wait(t, done)
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})
}

func TestServerConfig(t *testing.T) {
	flags := &Flags{
		Host:       "localhost",
		Port:       9090,
		Prefix:     "/api/v1",
		AuthHeader: "X-API-Key",
		Metrics:    true,
	}

	t.Run("flags", func(t *testing.T) {
		t.Setenv(EnvHost, "")
		t.Setenv(EnvPort, "")
		cfg, err := flags.serverConfig()
		require.NoError(t, err)
		assert.Equal(t, "localhost:9090", cfg.Addr())
		assert.False(t, cfg.AuthEnabled)
	})

	t.Run("environment overrides flags", func(t *testing.T) {
		t.Setenv(EnvHost, "0.0.0.0")
		t.Setenv(EnvPort, "8081")
		cfg, err := flags.serverConfig()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:8081", cfg.Addr())
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv(EnvPort, "http")
		_, err := flags.serverConfig()
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})

	t.Run("api key from environment", func(t *testing.T) {
		t.Setenv(EnvHost, "")
		t.Setenv(EnvPort, "")
		t.Setenv(EnvAPIKey, "secret")
		withAuth := *flags
		withAuth.Auth = true
		cfg, err := withAuth.serverConfig()
		require.NoError(t, err)
		assert.True(t, cfg.AuthEnabled)
		assert.Equal(t, "secret", cfg.APIKey)
	})
}
