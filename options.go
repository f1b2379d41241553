package catalogsync

import (
	"time"

	"github.com/agentstation/catalogsync/internal/sources/registry"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

// options holds the client configuration.
type options struct {
	scheduler refresh.Scheduler
	recorder  refresh.Recorder
	timeout   *time.Duration
	kinds     []string
	engines   []*reconciler.Engine
}

// Option is a function that configures a Client.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithScheduler replaces the built-in interval scheduler. The caller owns
// the scheduler's lifecycle.
func WithScheduler(s refresh.Scheduler) Option {
	return func(o *options) error {
		if s == nil {
			return errors.NewValidationError("scheduler", nil, "cannot be nil")
		}
		o.scheduler = s
		return nil
	}
}

// WithRecorder observes every refresh cycle, e.g. to export metrics.
func WithRecorder(r refresh.Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithTimeout overrides catalog.refresh.timeout. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "cannot be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithKinds restricts configuration resolution to the given provider kinds.
func WithKinds(kinds ...string) Option {
	return func(o *options) error {
		for _, kind := range kinds {
			if !registry.Has(kind) {
				return errors.NewValidationError("kind", kind, "unsupported provider kind")
			}
		}
		o.kinds = append(o.kinds, kinds...)
		return nil
	}
}

// WithEngines adds pre-built engines, e.g. with custom filters or
// transformers, alongside the ones resolved from configuration.
func WithEngines(engines ...*reconciler.Engine) Option {
	return func(o *options) error {
		for _, e := range engines {
			if e == nil {
				return errors.NewValidationError("engine", nil, "cannot be nil")
			}
		}
		o.engines = append(o.engines, engines...)
		return nil
	}
}
