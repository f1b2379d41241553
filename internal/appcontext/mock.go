package appcontext

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync"
)

// Compile-time interface check to ensure proper implementation.
var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ViperFunc     func() (*viper.Viper, error)
	NewClientFunc func(context.Context, ...catalogsync.Option) (catalogsync.Client, error)
	LoggerFunc    func() *zerolog.Logger
	Format        string
	VersionValue  string
}

// Viper returns the mock viper, or an empty one.
func (m *Mock) Viper() (*viper.Viper, error) {
	if m.ViperFunc != nil {
		return m.ViperFunc()
	}
	return viper.New(), nil
}

// NewClient returns a client using the mock function, or one built from Viper.
func (m *Mock) NewClient(ctx context.Context, opts ...catalogsync.Option) (catalogsync.Client, error) {
	if m.NewClientFunc != nil {
		return m.NewClientFunc(ctx, opts...)
	}
	v, err := m.Viper()
	if err != nil {
		return nil, err
	}
	return catalogsync.New(ctx, v, opts...)
}

// Logger returns a logger using the mock function or a nop logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Version returns the mock version or "dev".
func (m *Mock) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
