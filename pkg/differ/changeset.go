package differ

import (
	"fmt"

	"github.com/agentstation/catalogsync/pkg/catalog"
)

// Update represents a change to an entity present in both snapshots.
type Update struct {
	Ref      string         // Ref of the entity being updated
	Existing catalog.Entity // Previous entity
	New      catalog.Entity // Replacement entity
	Diff     string         // Human-readable diff, - for existing and + for new
}

// Changeset represents all changes between two snapshots.
type Changeset struct {
	Added   []catalog.Entity
	Updated []Update
	Removed []catalog.Entity
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Summary returns a one-line description of the changeset.
func (c *Changeset) Summary() string {
	if c.IsEmpty() {
		return "no changes"
	}
	return fmt.Sprintf("%d added, %d updated, %d removed", len(c.Added), len(c.Updated), len(c.Removed))
}
