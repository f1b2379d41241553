// Package config loads catalogsync configuration from .env files, the
// catalogsync.yaml config file and CATALOGSYNC_ environment variables.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// Refresh keys below constants.RefreshConfigKey.
const (
	KeyInterval     = constants.RefreshConfigKey + ".interval"
	KeyTimeout      = constants.RefreshConfigKey + ".timeout"
	KeyInitialDelay = constants.RefreshConfigKey + ".initialDelay"
)

type options struct {
	file        string
	envFiles    []string
	searchPaths []string
}

// Option configures Load.
type Option func(*options)

// WithFile reads exactly this config file. A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnvFiles replaces the default .env and .env.local files.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.envFiles = files
	}
}

// WithSearchPaths replaces the directories searched for catalogsync.yaml.
func WithSearchPaths(paths ...string) Option {
	return func(o *options) {
		o.searchPaths = paths
	}
}

func defaultOptions() *options {
	o := &options{
		envFiles:    []string{".env", ".env.local"},
		searchPaths: []string{"."},
	}
	if home, err := os.UserHomeDir(); err == nil {
		o.searchPaths = append(o.searchPaths, home)
	}
	return o
}

// Load builds a viper instance in order of precedence:
// 1. Environment variables (CATALOGSYNC_CATALOG_REFRESH_INTERVAL etc.)
// 2. .env files
// 3. Config file, with ${VAR} references expanded from the environment
// 4. Defaults
func Load(opts ...Option) (*viper.Viper, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// .env.local overrides .env, and neither overrides the real environment.
	for i := len(o.envFiles) - 1; i >= 0; i-- {
		_ = godotenv.Load(o.envFiles[i])
	}

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	v.SetDefault(KeyInterval, constants.DefaultRefreshInterval)
	v.SetDefault(KeyTimeout, constants.CycleTimeout)
	v.SetDefault(KeyInitialDelay, time.Duration(0))

	path := o.file
	if path == "" {
		path = find(o.searchPaths)
	}
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("", "cannot read "+path, err)
	}
	v.SetConfigFile(path)
	if err := v.ReadConfig(bytes.NewReader([]byte(os.ExpandEnv(string(data))))); err != nil {
		return nil, errors.NewConfigError("", "cannot parse "+path, err)
	}
	return v, nil
}

func find(dirs []string) string {
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, constants.ConfigName+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Refresh holds scheduler settings.
type Refresh struct {
	Interval     time.Duration
	Timeout      time.Duration
	InitialDelay time.Duration
}

// RefreshSettings reads the catalog.refresh tree. Unset keys keep their defaults.
func RefreshSettings(v *viper.Viper) (Refresh, error) {
	r := Refresh{
		Interval: constants.DefaultRefreshInterval,
		Timeout:  constants.CycleTimeout,
	}
	fields := []struct {
		key string
		dst *time.Duration
	}{
		{KeyInterval, &r.Interval},
		{KeyTimeout, &r.Timeout},
		{KeyInitialDelay, &r.InitialDelay},
	}
	for _, f := range fields {
		if !v.IsSet(f.key) {
			continue
		}
		d, err := cast.ToDurationE(v.Get(f.key))
		if err != nil {
			return Refresh{}, errors.NewConfigError(f.key, "invalid duration", err)
		}
		if d < 0 {
			return Refresh{}, errors.NewConfigError(f.key, "must not be negative", nil)
		}
		*f.dst = d
	}
	if r.Interval == 0 {
		return Refresh{}, errors.NewConfigError(KeyInterval, "must be positive", nil)
	}
	return r, nil
}
