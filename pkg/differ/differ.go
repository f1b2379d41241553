// Package differ compares two snapshots of catalog entities and reports what
// a full mutation added, updated and removed.
package differ

import (
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/agentstation/catalogsync/pkg/catalog"
)

// Differ handles change detection between entity snapshots.
type Differ interface {
	// Entities compares the previous and next snapshot of one provider
	Entities(existing, updated []catalog.Entity) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreAnnotations map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{ignoreAnnotations: make(map[string]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entities compares two snapshots keyed by case-insensitive entity ref.
func (d *differ) Entities(existing, updated []catalog.Entity) *Changeset {
	changeset := &Changeset{}

	existingMap := make(map[string]catalog.Entity, len(existing))
	for _, e := range existing {
		existingMap[key(e)] = e
	}
	updatedMap := make(map[string]bool, len(updated))

	for _, e := range updated {
		k := key(e)
		updatedMap[k] = true
		old, ok := existingMap[k]
		if !ok {
			changeset.Added = append(changeset.Added, e)
			continue
		}
		if !d.equal(old, e) {
			changeset.Updated = append(changeset.Updated, Update{
				Ref:      e.Ref(),
				Existing: old,
				New:      e,
				Diff:     cmp.Diff(d.comparable(old), d.comparable(e), cmpopts.EquateEmpty()),
			})
		}
	}

	for _, e := range existing {
		if !updatedMap[key(e)] {
			changeset.Removed = append(changeset.Removed, e)
		}
	}

	changeset.sort()
	return changeset
}

func (d *differ) equal(a, b catalog.Entity) bool {
	return cmp.Equal(d.comparable(a), d.comparable(b), cmpopts.EquateEmpty())
}

// comparable strips ignored annotations so they never register as updates.
func (d *differ) comparable(e catalog.Entity) catalog.Entity {
	if len(d.ignoreAnnotations) == 0 || len(e.Metadata.Annotations) == 0 {
		return e
	}
	e = catalog.Clone(e)
	for k := range e.Metadata.Annotations {
		if d.ignoreAnnotations[k] {
			delete(e.Metadata.Annotations, k)
		}
	}
	return e
}

func key(e catalog.Entity) string {
	return strings.ToLower(e.Ref())
}

func byRef(a, b catalog.Entity) int {
	return strings.Compare(a.Ref(), b.Ref())
}

func (c *Changeset) sort() {
	slices.SortFunc(c.Added, byRef)
	slices.SortFunc(c.Removed, byRef)
	slices.SortFunc(c.Updated, func(a, b Update) int {
		return strings.Compare(a.Ref, b.Ref)
	})
}
