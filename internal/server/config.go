package server

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// Authentication for mutating endpoints
	AuthEnabled bool
	AuthHeader  string
	APIKey      string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           9090,
		PathPrefix:     "/api/v1",
		AuthHeader:     "X-API-Key",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Minute, // a synchronous refresh can run up to the cycle timeout
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
