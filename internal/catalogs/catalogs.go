// Package catalogs holds the reference catalog sinks shipped with catalogsync.
package catalogs

import (
	"context"
	"strings"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// Catalog names a sink implementation.
type Catalog string

// Available sinks.
const (
	Files  Catalog = "files"
	Memory Catalog = "memory"
)

func (c Catalog) String() string {
	return string(c)
}

// Parse returns the sink named s.
func Parse(s string) (Catalog, error) {
	switch c := Catalog(strings.ToLower(strings.TrimSpace(s))); c {
	case Files, Memory:
		return c, nil
	default:
		return "", errors.NewValidationError("sink", s, "must be one of: files, memory")
	}
}

// Tee returns a connector whose sinks apply every mutation to each of
// connectors in order, stopping at the first failure.
func Tee(connectors ...catalog.Connector) catalog.Connector {
	return tee(connectors)
}

type tee []catalog.Connector

func (t tee) Connection(provider string) catalog.Sink {
	sinks := make([]catalog.Sink, len(t))
	for i, c := range t {
		sinks[i] = c.Connection(provider)
	}
	return catalog.SinkFunc(func(ctx context.Context, m catalog.Mutation) error {
		for _, s := range sinks {
			if err := s.ApplyMutation(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}
