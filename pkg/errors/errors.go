// Package errors provides custom error types for the catalogsync system.
// These errors enable programmatic error checking across the reconciliation
// pipeline: configuration failures are fatal at startup, while fetch,
// transform, hook and sink failures abort a single refresh cycle.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Join is an alias for the standard library errors.Join.
var Join = errors.Join

// Common sentinel errors for the catalogsync system
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration error detected at startup
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotConnected indicates a refresh was attempted before a sink was bound
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates a second attempt to bind a sink
	ErrAlreadyConnected = errors.New("already connected")

	// ErrCycleInProgress indicates a refresh was requested while one is running
	ErrCycleInProgress = errors.New("refresh cycle already in progress")

	// ErrFetch indicates a paginated pull from an upstream API failed
	ErrFetch = errors.New("fetch failed")

	// ErrCursorLoop indicates an upstream API returned a cursor it already returned
	ErrCursorLoop = errors.New("pagination cursor repeated")

	// ErrTransform indicates a transform of a single instance failed
	ErrTransform = errors.New("transform failed")

	// ErrHook indicates the cross-collection hook failed
	ErrHook = errors.New("hook failed")

	// ErrSink indicates the catalog sink rejected or failed a mutation
	ErrSink = errors.New("sink failed")

	// ErrProviderUnavailable indicates that a provider is temporarily unavailable
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the upstream rejected the configured credentials
	ErrUnauthorized = errors.New("unauthorized")
)

// ConfigError represents a configuration error at an exact dotted path.
type ConfigError struct {
	Path    string // e.g. catalog.providers.aws.east.region
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(path, message string, err error) *ConfigError {
	return &ConfigError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// MissingConfig creates a ConfigError for a required value that is absent.
func MissingConfig(path string) *ConfigError {
	return &ConfigError{Path: path, Message: "missing required value"}
}

// FetchError represents a failed paginated pull.
type FetchError struct {
	Provider   string
	Collection string
	Page       int // 1-based page number that failed, 0 if unknown
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	target := e.Collection
	if e.Provider != "" {
		target = e.Provider + "/" + e.Collection
	}
	if e.Page > 0 {
		return fmt.Sprintf("fetch %s failed on page %d: %v", target, e.Page, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: %v", target, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// TransformError represents a failed instance transform.
type TransformError struct {
	Provider   string
	Collection string
	InstanceID string
	Err        error
}

// Error implements the error interface
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s instance %q failed: %v", e.Collection, e.InstanceID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransformError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransformError) Is(target error) bool {
	return target == ErrTransform
}

// HookError represents a failure of the cross-collection hook.
type HookError struct {
	Provider string
	Err      error
}

// Error implements the error interface
func (e *HookError) Error() string {
	return fmt.Sprintf("hook for %s failed: %v", e.Provider, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *HookError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *HookError) Is(target error) bool {
	return target == ErrHook
}

// SinkError represents a failed applyMutation call.
type SinkError struct {
	LocationKey string
	Entities    int
	Err         error
}

// Error implements the error interface
func (e *SinkError) Error() string {
	return fmt.Sprintf("apply mutation for %s (%d entities) failed: %v", e.LocationKey, e.Entities, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SinkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SinkError) Is(target error) bool {
	return target == ErrSink
}

// NotConnectedError is returned when a refresh runs before a sink is bound.
type NotConnectedError struct {
	Provider string
}

// Error implements the error interface
func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("connection not initialized for %s", e.Provider)
}

// Is implements errors.Is support
func (e *NotConnectedError) Is(target error) bool {
	return target == ErrNotConnected
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from an upstream inventory API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrUnauthorized
	case e.StatusCode >= 500:
		return target == ErrProviderUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(provider string, statusCode int, message string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "load", "build"
	Resource  string // "client", "config", "provider"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsConfigError checks if an error is a startup configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsNotConnected checks if an error is a use-before-connect error
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsProviderUnavailable checks if an error indicates provider unavailability
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
