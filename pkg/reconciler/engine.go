// Package reconciler runs one reconciliation cycle for one provider: it
// fetches, filters, transforms and enriches every collection the provider
// manages, lets an optional hook rewrite the combined result, and hands a
// single full-snapshot mutation to the catalog sink.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provenance"
	"github.com/agentstation/catalogsync/pkg/provider"
)

// Snapshot holds the fully built entities of every collection, keyed by
// collection name.
type Snapshot map[string][]catalog.Entity

// Hook receives every collection of a cycle together and may rewrite any of
// them before anything is committed. Returning a nil Snapshot keeps the input.
type Hook func(ctx context.Context, snapshot Snapshot) (Snapshot, error)

// Engine executes reconciliation cycles for one provider identity.
type Engine struct {
	identity provider.Identity
	builders []Builder
	hook     Hook
}

// New creates an Engine for identity with the given collections and hook.
func New(identity provider.Identity, opts ...Option) (*Engine, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if identity.Kind == "" {
		return nil, errors.NewValidationError("identity.kind", identity.Kind, "cannot be empty")
	}
	if len(options.builders) == 0 {
		return nil, errors.NewValidationError("collections", nil, "at least one collection is required")
	}

	return &Engine{
		identity: identity,
		builders: options.builders,
		hook:     options.hook,
	}, nil
}

// Identity returns the provider identity the engine reconciles for.
func (e *Engine) Identity() provider.Identity {
	return e.identity
}

// Run executes one cycle and applies the resulting full mutation to sink.
// The sink is called exactly once on success and never on failure.
func (e *Engine) Run(ctx context.Context, sink catalog.Sink) (*Result, error) {
	if sink == nil {
		return nil, &errors.NotConnectedError{Provider: e.identity.Name()}
	}

	result := NewResult(e.identity)
	logger := logging.FromContext(ctx)

	snapshot, err := e.build(ctx)
	if err != nil {
		return nil, err
	}

	if e.hook != nil {
		snapshot, err = e.runHook(ctx, snapshot)
		if err != nil {
			return nil, err
		}
	}

	var entities []catalog.Entity
	seen := make(map[string]string)
	for _, b := range e.builders {
		name := b.CollectionName()
		for _, entity := range snapshot[name] {
			if err := validateEntity(b, entity); err != nil {
				return nil, fmt.Errorf("collection %s: %w", name, err)
			}
			// Refs compare case-insensitively in every sink.
			ref := strings.ToLower(entity.Ref())
			if prev, ok := seen[ref]; ok {
				return nil, fmt.Errorf("collection %s: %w", name, errors.NewValidationError("metadata.name", entity.Ref(),
					fmt.Sprintf("duplicate ref %s (already produced by collection %s)", entity.Ref(), prev)))
			}
			seen[ref] = name
		}
		entities = append(entities, snapshot[name]...)
		result.Collections[name] = len(snapshot[name])
	}

	locationKey := e.identity.Name()
	mutation := catalog.NewFullMutation(locationKey, entities)
	if err := sink.ApplyMutation(ctx, mutation); err != nil {
		return nil, &errors.SinkError{LocationKey: locationKey, Entities: len(entities), Err: err}
	}

	result.Entities = len(entities)
	result.Finalize()

	logger.Info().
		Int("entities", result.Entities).
		Dur("duration", result.Duration).
		Msg("Applied full mutation")

	return result, nil
}

// Preview executes a cycle without a sink and returns the mutation that
// would have been applied.
func (e *Engine) Preview(ctx context.Context) (catalog.Mutation, error) {
	var captured catalog.Mutation
	_, err := e.Run(ctx, catalog.SinkFunc(func(_ context.Context, m catalog.Mutation) error {
		captured = m
		return nil
	}))
	return captured, err
}

func (e *Engine) build(ctx context.Context) (Snapshot, error) {
	snapshot := make(Snapshot, len(e.builders))
	for _, b := range e.builders {
		entities, err := b.Build(ctx)
		if err != nil {
			return nil, annotateProvider(err, e.identity.Name())
		}
		snapshot[b.CollectionName()] = entities
	}
	return snapshot, nil
}

func (e *Engine) runHook(ctx context.Context, snapshot Snapshot) (out Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &errors.HookError{Provider: e.identity.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = e.hook(ctx, snapshot.Clone())
	if err != nil {
		return nil, &errors.HookError{Provider: e.identity.Name(), Err: err}
	}
	if out == nil {
		return snapshot, nil
	}
	return out, nil
}

func validateEntity(b Builder, entity catalog.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	return provenance.Check(entity,
		b.VendorKey(),
		provenance.AnnotationLocation,
		provenance.AnnotationOriginLocation,
	)
}

func annotateProvider(err error, name string) error {
	var fetchErr *errors.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Provider == "" {
		fetchErr.Provider = name
	}
	var transformErr *errors.TransformError
	if errors.As(err, &transformErr) && transformErr.Provider == "" {
		transformErr.Provider = name
	}
	return err
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for name, entities := range s {
		cloned := make([]catalog.Entity, len(entities))
		for i, e := range entities {
			cloned[i] = catalog.Clone(e)
		}
		out[name] = cloned
	}
	return out
}
