package reconciler

import (
	"github.com/agentstation/catalogsync/pkg/errors"
)

// options configures an Engine.
type options struct {
	builders []Builder
	hook     Hook
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	return (&options{}).apply(opts...)
}

// WithCollection adds a collection. Collections are built in the order added.
func WithCollection[T any](c *Collection[T]) Option {
	return func(o *options) error {
		if c == nil {
			return &errors.ValidationError{Field: "collection", Message: "cannot be nil"}
		}
		if err := c.validate(); err != nil {
			return err
		}
		for _, b := range o.builders {
			if b.CollectionName() == c.Name {
				return errors.NewValidationError("collection", c.Name, "duplicate collection name")
			}
		}
		o.builders = append(o.builders, c)
		return nil
	}
}

// WithHook sets the cross-collection hook run once per cycle.
func WithHook(hook Hook) Option {
	return func(o *options) error {
		o.hook = hook
		return nil
	}
}
