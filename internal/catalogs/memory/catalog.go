// Package memory provides an in-memory catalog that applies full mutations
// per provider, for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/text/cases"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/differ"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ catalog.Connector = (*Catalog)(nil)

// Catalog stores entities grouped by the provider that contributed them.
// Entity refs are compared case-insensitively.
type Catalog struct {
	mu       sync.RWMutex
	owners   map[string]string                    // folded ref -> provider
	entities map[string]map[string]catalog.Entity // provider -> folded ref -> entity
	applied  map[string]int                       // provider -> mutations applied
	changes  map[string]*differ.Changeset         // provider -> last mutation's changes
	fold     cases.Caser
	differ   differ.Differ
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		owners:   make(map[string]string),
		entities: make(map[string]map[string]catalog.Entity),
		applied:  make(map[string]int),
		changes:  make(map[string]*differ.Changeset),
		fold:     cases.Fold(),
		differ:   differ.New(),
	}
}

// Connection implements catalog.Connector.
func (c *Catalog) Connection(provider string) catalog.Sink {
	return &connection{catalog: c, provider: provider}
}

type connection struct {
	catalog  *Catalog
	provider string
}

// ApplyMutation replaces everything previously contributed by the provider.
func (conn *connection) ApplyMutation(ctx context.Context, m catalog.Mutation) error {
	return conn.catalog.apply(ctx, conn.provider, m)
}

func (c *Catalog) apply(ctx context.Context, provider string, m catalog.Mutation) error {
	if m.Type != catalog.MutationFull {
		return errors.NewValidationError("type", m.Type, "only full mutations are supported")
	}

	next := make(map[string]catalog.Entity, len(m.Entities))
	for _, d := range m.Entities {
		if err := d.Entity.Validate(); err != nil {
			return err
		}
		if d.LocationKey != provider {
			return errors.NewValidationError("locationKey", d.LocationKey,
				fmt.Sprintf("entity %s does not belong to %s", d.Entity.Ref(), provider))
		}
		next[c.key(d.Entity)] = catalog.Clone(d.Entity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := logging.FromContext(ctx)
	for key := range next {
		if owner, ok := c.owners[key]; ok && owner != provider {
			logger.Warn().
				Str("ref", next[key].Ref()).
				Str("owner", owner).
				Msg("Entity already provided by another provider, skipping")
			delete(next, key)
		}
	}

	changes := c.differ.Entities(slices.Collect(maps.Values(c.entities[provider])), slices.Collect(maps.Values(next)))

	for key := range c.entities[provider] {
		delete(c.owners, key)
	}
	for key := range next {
		c.owners[key] = provider
	}
	c.entities[provider] = next
	c.applied[provider]++
	c.changes[provider] = changes

	event := logger.Debug()
	if !changes.IsEmpty() {
		event = logger.Info()
	}
	event.
		Str(logging.FieldProvider, provider).
		Int("entities", len(next)).
		Int("added", len(changes.Added)).
		Int("updated", len(changes.Updated)).
		Int("removed", len(changes.Removed)).
		Msg("Applied full mutation")
	return nil
}

func (c *Catalog) key(e catalog.Entity) string {
	return c.fold.String(e.Ref())
}

// Get returns the entity with the given ref (kind:namespace/name).
func (c *Catalog) Get(ref string) (catalog.Entity, bool) {
	key := c.fold.String(ref)
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[key]
	if !ok {
		return catalog.Entity{}, false
	}
	return catalog.Clone(c.entities[owner][key]), true
}

// Entities returns every entity sorted by ref.
func (c *Catalog) Entities() []catalog.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []catalog.Entity
	for _, set := range c.entities {
		for _, e := range set {
			out = append(out, catalog.Clone(e))
		}
	}
	sortByRef(out)
	return out
}

// EntitiesFor returns the entities contributed by provider sorted by ref.
func (c *Catalog) EntitiesFor(provider string) []catalog.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Entity, 0, len(c.entities[provider]))
	for _, e := range c.entities[provider] {
		out = append(out, catalog.Clone(e))
	}
	sortByRef(out)
	return out
}

// Applied returns how many mutations provider has applied.
func (c *Catalog) Applied(provider string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied[provider]
}

// Changes returns what the provider's most recent mutation added, updated
// and removed, or nil before its first mutation.
func (c *Catalog) Changes(provider string) *differ.Changeset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changes[provider]
}

// Len returns the total number of entities.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.owners)
}

func sortByRef(entities []catalog.Entity) {
	slices.SortFunc(entities, func(a, b catalog.Entity) int {
		switch ra, rb := a.Ref(), b.Ref(); {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
}
