package refresh

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

type options struct {
	timeout  time.Duration
	recorder Recorder
	newID    func() string
}

func defaultOptions() *options {
	return &options{
		timeout:  constants.CycleTimeout,
		recorder: nopRecorder{},
		newID:    uuid.NewString,
	}
}

// Option is a function that configures a Controller.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithTimeout bounds every cycle; zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "cannot be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithRecorder sets the cycle observer.
func WithRecorder(r Recorder) Option {
	return func(o *options) error {
		if r == nil {
			r = nopRecorder{}
		}
		o.recorder = r
		return nil
	}
}

// WithCorrelationIDs overrides correlation id generation.
func WithCorrelationIDs(fn func() string) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.NewValidationError("correlationIDs", nil, "cannot be nil")
		}
		o.newID = fn
		return nil
	}
}
