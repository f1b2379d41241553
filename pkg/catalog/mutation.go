package catalog

import "context"

// MutationType identifies how a sink applies a mutation.
type MutationType string

// MutationFull replaces everything previously attributed to the same
// location key. It is the only mutation type this module produces.
const MutationFull MutationType = "full"

// DeferredEntity pairs an entity with the location key that owns it.
type DeferredEntity struct {
	Entity      Entity `json:"entity" yaml:"entity"`
	LocationKey string `json:"locationKey" yaml:"locationKey"`
}

// Mutation is one complete statement of truth for one provider for one cycle.
type Mutation struct {
	Type     MutationType     `json:"type" yaml:"type"`
	Entities []DeferredEntity `json:"entities" yaml:"entities"`
}

// NewFullMutation builds a full mutation assigning every entity to locationKey.
func NewFullMutation(locationKey string, entities []Entity) Mutation {
	deferred := make([]DeferredEntity, len(entities))
	for i, e := range entities {
		deferred[i] = DeferredEntity{Entity: e, LocationKey: locationKey}
	}
	return Mutation{Type: MutationFull, Entities: deferred}
}

// Sink receives mutations from one provider.
type Sink interface {
	ApplyMutation(ctx context.Context, mutation Mutation) error
}

// Connector hands out the sink bound to a single provider name.
type Connector interface {
	Connection(provider string) Sink
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, mutation Mutation) error

// ApplyMutation implements Sink.
func (f SinkFunc) ApplyMutation(ctx context.Context, mutation Mutation) error {
	return f(ctx, mutation)
}
