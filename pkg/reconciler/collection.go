package reconciler

import (
	"context"
	"fmt"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provenance"
)

// Filter decides whether an instance is reconciled. A nil Filter keeps everything.
type Filter[T any] func(instance T) bool

// Transformer maps one instance to its catalog entity. It may only read the
// instance; transforms of different instances run concurrently.
type Transformer[T any] func(ctx context.Context, instance T) (catalog.Entity, error)

// Builder produces the enriched entities of one collection for one cycle.
type Builder interface {
	// CollectionName is the key under which the entities appear in a Snapshot.
	CollectionName() string

	// VendorKey is the annotation carrying the vendor-native identifier.
	VendorKey() string

	// Build fetches, filters, transforms and enriches the collection.
	Build(ctx context.Context) ([]catalog.Entity, error)
}

// Collection is one independently fetched set of instances, such as RDS
// instances or directory users.
type Collection[T any] struct {
	Name             string
	Source           Source[T]
	VendorAnnotation string
	Filter           Filter[T]
	Transform        Transformer[T]

	// Concurrency bounds the transform fan-out; zero uses the default.
	Concurrency int
}

// CollectionName implements Builder.
func (c *Collection[T]) CollectionName() string {
	return c.Name
}

// VendorKey implements Builder.
func (c *Collection[T]) VendorKey() string {
	return c.VendorAnnotation
}

func (c *Collection[T]) validate() error {
	switch {
	case c.Name == "":
		return errors.NewValidationError("name", c.Name, "cannot be empty")
	case c.Source == nil:
		return errors.NewValidationError("source", nil, "cannot be nil")
	case c.Transform == nil:
		return errors.NewValidationError("transform", nil, "cannot be nil")
	case c.VendorAnnotation == "":
		return errors.NewValidationError("vendorAnnotation", c.VendorAnnotation, "cannot be empty")
	}
	return nil
}

// Build implements Builder. Entities keep the order of the fetched instances.
func (c *Collection[T]) Build(ctx context.Context) ([]catalog.Entity, error) {
	ctx = logging.WithCollection(ctx, c.Name)
	logger := logging.FromContext(ctx)

	instances, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, c.fetchError(err)
	}

	kept := instances
	if c.Filter != nil {
		kept = make([]T, 0, len(instances))
		for _, inst := range instances {
			if c.Filter(inst) {
				kept = append(kept, inst)
			}
		}
	}

	logger.Debug().
		Int("fetched", len(instances)).
		Int("kept", len(kept)).
		Msg("Filtered instances")

	limit := c.Concurrency
	if limit <= 0 {
		limit = constants.MaxConcurrentTransforms
	}

	entities := make([]catalog.Entity, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, inst := range kept {
		g.Go(func() error {
			entity, err := c.transformOne(gctx, inst)
			if err != nil {
				return err
			}
			entities[i] = entity
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entities, nil
}

func (c *Collection[T]) transformOne(ctx context.Context, inst T) (entity catalog.Entity, err error) {
	id := c.Source.Identify(inst)

	defer func() {
		if r := recover(); r != nil {
			err = &errors.TransformError{
				Collection: c.Name,
				InstanceID: id,
				Err:        fmt.Errorf("panic: %v", r),
			}
		}
	}()

	transformed, err := c.Transform(ctx, inst)
	if err != nil {
		return catalog.Entity{}, &errors.TransformError{Collection: c.Name, InstanceID: id, Err: err}
	}

	var location string
	if l, ok := c.Source.(Locator[T]); ok {
		location = l.Location(inst)
	}
	computed := provenance.Annotations(c.VendorAnnotation, id, location)
	if a, ok := c.Source.(Annotator[T]); ok {
		merged := make(map[string]string)
		maps.Copy(merged, a.Annotations(inst))
		maps.Copy(merged, computed)
		computed = merged
	}

	entity = provenance.Enrich(transformed, computed)
	if entity.APIVersion == "" {
		entity.APIVersion = catalog.DefaultAPIVersion
	}
	return entity, nil
}

func (c *Collection[T]) fetchError(err error) error {
	var fetchErr *errors.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Collection == "" {
			fetchErr.Collection = c.Name
		}
		return fetchErr
	}
	return &errors.FetchError{Collection: c.Name, Err: err}
}
