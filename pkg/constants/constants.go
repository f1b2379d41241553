// Package constants provides shared constants used throughout the catalogsync codebase.
// This includes timeouts, limits, configuration keys and file permissions that
// should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request to an inventory API
	DefaultHTTPTimeout = 30 * time.Second

	// CycleTimeout bounds one complete refresh cycle (fetch, transform, apply)
	CycleTimeout = 10 * time.Minute

	// DefaultRefreshInterval is the default cadence of the interval scheduler
	DefaultRefreshInterval = 30 * time.Minute

	// ShutdownTimeout is how long the CLI waits for running cycles on exit
	ShutdownTimeout = 5 * time.Second
)

// Limit constants define various limits and capacities
const (
	// DefaultPageSize is the page size requested from paginated inventory APIs
	DefaultPageSize = 100

	// OktaPageSize is the page size requested from the Okta list endpoints
	OktaPageSize = 200

	// MaxConcurrentTransforms bounds the transform fan-out within one collection
	MaxConcurrentTransforms = 16
)

// Configuration keys
const (
	// ProvidersConfigKey is the root of the per-kind provider configuration tree
	ProvidersConfigKey = "catalog.providers"

	// RefreshConfigKey holds scheduler settings
	RefreshConfigKey = "catalog.refresh"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "CATALOGSYNC"

	// ConfigName is the config file base name searched in . and $HOME
	ConfigName = "catalogsync"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0o755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0o644
)
