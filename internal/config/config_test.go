package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	v, err := Load(WithSearchPaths(dir), WithEnvFiles())
	require.NoError(t, err)
	assert.Empty(t, v.ConfigFileUsed())

	r, err := RefreshSettings(v)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultRefreshInterval, r.Interval)
	assert.Equal(t, constants.CycleTimeout, r.Timeout)
	assert.Zero(t, r.InitialDelay)
}

func TestLoadSearchesForConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalogsync.yml", `
catalog:
  refresh:
    interval: 5m
    initialDelay: 10s
  providers:
    aws:
      east:
        region: us-east-1
`)

	v, err := Load(WithSearchPaths(dir), WithEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, path, v.ConfigFileUsed())

	r, err := RefreshSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, r.Interval)
	assert.Equal(t, 10*time.Second, r.InitialDelay)

	configs, err := provider.Resolve(t.Context(), v, provider.Schema{Kind: "RDSEntityProvider", Key: "aws", EndpointField: "region"})
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "us-east-1", configs[0].Endpoint)
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Setenv("TEST_OKTA_TOKEN", "s3cret")
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
catalog:
  providers:
    okta:
      prod:
        url: https://example.okta.com
        apiToken: ${TEST_OKTA_TOKEN}
`)

	v, err := Load(WithFile(path), WithEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v.GetString("catalog.providers.okta.prod.apitoken"))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CATALOGSYNC_CATALOG_REFRESH_INTERVAL", "90s")
	v, err := Load(WithSearchPaths(t.TempDir()), WithEnvFiles())
	require.NoError(t, err)

	r, err := RefreshSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, r.Interval)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "CATALOGSYNC_CATALOG_REFRESH_TIMEOUT=1m\n")
	local := writeFile(t, dir, ".env.local", "CATALOGSYNC_CATALOG_REFRESH_TIMEOUT=2m\n")
	t.Cleanup(func() { _ = os.Unsetenv("CATALOGSYNC_CATALOG_REFRESH_TIMEOUT") })

	v, err := Load(WithSearchPaths(dir), WithEnvFiles(env, local))
	require.NoError(t, err)

	r, err := RefreshSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, r.Timeout, ".env.local wins over .env")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(WithFile(filepath.Join(t.TempDir(), "nope.yaml")), WithEnvFiles())
		assert.True(t, errors.IsConfigError(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", "catalog: [unclosed")
		_, err := Load(WithFile(path), WithEnvFiles())
		assert.True(t, errors.IsConfigError(err))
	})
}

func TestRefreshSettingsValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		path string
	}{
		{"bad duration", "catalog:\n  refresh:\n    timeout: soon\n", KeyTimeout},
		{"negative delay", "catalog:\n  refresh:\n    initialDelay: -1s\n", KeyInitialDelay},
		{"zero interval", "catalog:\n  refresh:\n    interval: 0s\n", KeyInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", tt.yaml)
			v, err := Load(WithFile(path), WithEnvFiles())
			require.NoError(t, err)

			_, err = RefreshSettings(v)
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.path, cfgErr.Path)
		})
	}
}
