package refresh

import (
	"cmp"
	"slices"

	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/provenance"
)

// entity is the output view of one entity and the provider that owns it.
type entity struct {
	Provider string         `json:"provider" yaml:"provider"`
	Ref      string         `json:"ref" yaml:"ref"`
	Entity   catalog.Entity `json:"entity" yaml:"entity"`
}

func newEntity(provider string, e catalog.Entity) entity {
	return entity{Provider: provider, Ref: e.Ref(), Entity: e}
}

type entities []entity

func (l entities) sort() {
	slices.SortFunc(l, func(a, b entity) int {
		return cmp.Or(cmp.Compare(a.Provider, b.Provider), cmp.Compare(a.Ref, b.Ref))
	})
}

// Table implements output.Tabular.
func (l entities) Table() output.Data {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		ns := e.Entity.Metadata.Namespace
		if ns == "" {
			ns = "default"
		}
		rows = append(rows, []string{
			e.Provider,
			e.Entity.Kind,
			ns,
			e.Entity.Metadata.Name,
			e.Entity.Annotation(provenance.AnnotationLocation),
		})
	}
	return output.Data{
		Headers: []string{"Provider", "Kind", "Namespace", "Name", "Location"},
		Rows:    rows,
	}
}
