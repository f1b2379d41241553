// Package registry maps provider kinds to the factories that build their
// reconciliation engines from resolved configuration.
// This package is separate from the sources to avoid circular dependencies.
package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/agentstation/catalogsync/internal/sources/okta"
	"github.com/agentstation/catalogsync/internal/sources/rds"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Factory builds the engine for one configured instance of a kind.
type Factory struct {
	Schema provider.Schema
	New    func(ctx context.Context, cfg provider.Config) (*reconciler.Engine, error)
}

// registry maps provider kinds to their factories
var registry = map[string]Factory{
	rds.Kind: {
		Schema: rds.Schema,
		New: func(ctx context.Context, cfg provider.Config) (*reconciler.Engine, error) {
			return rds.NewEngine(ctx, cfg, rds.Options{})
		},
	},
	okta.Kind: {
		Schema: okta.Schema,
		New: func(ctx context.Context, cfg provider.Config) (*reconciler.Engine, error) {
			return okta.NewEngine(ctx, cfg, okta.Options{})
		},
	},
}

// Get returns the factory for kind.
func Get(kind string) (Factory, error) {
	f, ok := registry[kind]
	if !ok {
		return Factory{}, &errors.ValidationError{
			Field:   "kind",
			Value:   kind,
			Message: fmt.Sprintf("unsupported provider kind: %s", kind),
		}
	}
	return f, nil
}

// Has checks if a kind has a factory.
func Has(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// List returns all registered kinds in sorted order.
func List() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
