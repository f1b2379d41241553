// Package catalogsync keeps a software catalog in step with external
// inventories. It resolves provider instances from configuration, builds one
// reconciliation engine per instance, and drives each engine on a schedule so
// that every cycle hands the catalog one complete snapshot for that provider.
//
// Example usage:
//
//	v, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := catalogsync.New(ctx, v)
//	if err != nil {
//	    log.Fatal(err) // configuration errors are fatal at startup
//	}
//	defer client.Close()
//
//	client.OnRefreshFailed(func(status refresh.Status) {
//	    log.Printf("%s failed: %s", status.Provider, status.LastError)
//	})
//
//	// Bind every provider to its sink and start the schedule
//	if err := client.Connect(ctx, memory.NewCatalog()); err != nil {
//	    log.Fatal(err)
//	}
package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync/internal/config"
	"github.com/agentstation/catalogsync/internal/scheduler"
	"github.com/agentstation/catalogsync/internal/sources/registry"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client drives every configured provider.
type Client interface {
	// Providers returns the provider names in sorted order
	Providers() []string

	// Connect binds each provider to connector.Connection(name) and registers its refresh task
	Connect(ctx context.Context, connector catalog.Connector) error

	// Refresh runs one cycle for a single provider immediately
	Refresh(ctx context.Context, name string) (*reconciler.Result, error)

	// RefreshAll runs one cycle for every provider concurrently
	RefreshAll(ctx context.Context) (map[string]*reconciler.Result, error)

	// Preview builds a provider's mutation without applying it
	Preview(ctx context.Context, name string) (catalog.Mutation, error)

	// Status returns every controller's status sorted by provider
	Status() []refresh.Status

	// Close stops the scheduler the client created, if any
	Close()

	Hooks
}

// client is the internal implementation of the Client interface
type client struct {
	mu          sync.Mutex
	engines     map[string]*reconciler.Engine
	controllers map[string]*refresh.Controller
	names       []string

	scheduler refresh.Scheduler
	stop      func()

	hooks *hooks
}

// New resolves every registered provider kind from v and builds a controller
// per configured instance. Any configuration error is returned and should be
// treated as fatal. A nil v is allowed when engines are supplied with
// WithEngines.
func New(ctx context.Context, v *viper.Viper, opts ...Option) (Client, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	settings := config.Refresh{
		Interval: constants.DefaultRefreshInterval,
		Timeout:  constants.CycleTimeout,
	}
	if v != nil {
		if settings, err = config.RefreshSettings(v); err != nil {
			return nil, err
		}
	}
	timeout := settings.Timeout
	if o.timeout != nil {
		timeout = *o.timeout
	}

	engines, err := resolveEngines(ctx, v, o)
	if err != nil {
		return nil, err
	}

	c := &client{
		engines:     make(map[string]*reconciler.Engine, len(engines)),
		controllers: make(map[string]*refresh.Controller, len(engines)),
		scheduler:   o.scheduler,
		hooks:       newHooks(o.recorder),
	}

	if c.scheduler == nil {
		s, err := scheduler.NewInterval(settings.Interval, scheduler.WithInitialDelay(settings.InitialDelay))
		if err != nil {
			return nil, err
		}
		c.scheduler, c.stop = s, s.Stop
	}

	for _, e := range engines {
		name := e.Identity().Name()
		if _, dup := c.engines[name]; dup {
			return nil, pkgerrors.NewValidationError("provider", name, "configured more than once")
		}
		ctrl, err := refresh.NewController(e, c.scheduler,
			refresh.WithTimeout(timeout),
			refresh.WithRecorder(c.hooks),
		)
		if err != nil {
			return nil, pkgerrors.WrapResource("create", "controller", name, err)
		}
		c.engines[name] = e
		c.controllers[name] = ctrl
		c.names = append(c.names, name)
	}
	slices.Sort(c.names)

	logger := logging.FromContext(ctx)
	if len(c.names) == 0 {
		logger.Warn().Msg("No providers configured")
	} else {
		logger.Info().Strs("providers", c.names).Msg("Providers resolved")
	}
	return c, nil
}

// resolveEngines builds the supplied engines plus one engine per configured
// instance of each selected kind.
func resolveEngines(ctx context.Context, v *viper.Viper, o *options) ([]*reconciler.Engine, error) {
	engines := slices.Clone(o.engines)
	if v == nil {
		return engines, nil
	}

	kinds := o.kinds
	if len(kinds) == 0 {
		kinds = registry.List()
	}
	for _, kind := range kinds {
		factory, err := registry.Get(kind)
		if err != nil {
			return nil, err
		}
		configs, err := provider.Resolve(ctx, v, factory.Schema)
		if err != nil {
			return nil, err
		}
		for _, cfg := range configs {
			e, err := factory.New(ctx, cfg)
			if err != nil {
				return nil, pkgerrors.WrapResource("create", "engine", cfg.Identity().Name(), err)
			}
			engines = append(engines, e)
		}
	}
	return engines, nil
}

// Providers implements Client.
func (c *client) Providers() []string {
	return slices.Clone(c.names)
}

// Connect implements Client. Every provider is attempted; failures are joined.
func (c *client) Connect(ctx context.Context, connector catalog.Connector) error {
	if connector == nil {
		return pkgerrors.NewValidationError("connector", nil, "cannot be nil")
	}
	var errs []error
	for _, name := range c.names {
		if err := c.controllers[name].Connect(ctx, connector.Connection(name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Preview implements Client.
func (c *client) Preview(ctx context.Context, name string) (catalog.Mutation, error) {
	e, ok := c.engines[name]
	if !ok {
		return catalog.Mutation{}, unknownProvider(name)
	}
	return e.Preview(logging.WithProvider(ctx, name))
}

// Status implements Client.
func (c *client) Status() []refresh.Status {
	out := make([]refresh.Status, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.controllers[name].Status())
	}
	return out
}

// Close implements Client.
func (c *client) Close() {
	c.mu.Lock()
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func unknownProvider(name string) error {
	return pkgerrors.NewValidationError("provider", name, "unknown provider")
}
