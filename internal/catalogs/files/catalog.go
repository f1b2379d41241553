// Package files provides a catalog sink that writes each provider's latest
// full mutation to its own YAML file.
package files

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ catalog.Connector = (*Catalog)(nil)

// Document is the on-disk form of one provider's snapshot.
type Document struct {
	Provider    string           `yaml:"provider"`
	GeneratedAt time.Time        `yaml:"generatedAt"`
	Entities    []catalog.Entity `yaml:"entities"`
}

// Catalog writes snapshots under a base directory.
type Catalog struct {
	basePath string
	mu       sync.Mutex
	now      func() time.Time
}

// NewCatalog creates a files catalog rooted at basePath.
func NewCatalog(basePath string) (*Catalog, error) {
	if basePath == "" {
		return nil, errors.NewValidationError("path", basePath, "cannot be empty")
	}
	if err := os.MkdirAll(basePath, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", basePath, err)
	}
	return &Catalog{basePath: basePath, now: time.Now}, nil
}

// Path returns the base directory.
func (c *Catalog) Path() string {
	return c.basePath
}

// FileFor returns the file that holds provider's snapshot.
func (c *Catalog) FileFor(provider string) string {
	return filepath.Join(c.basePath, fileName(provider))
}

var nameReplacer = strings.NewReplacer(":", "_", "/", "_", string(filepath.Separator), "_")

func fileName(provider string) string {
	return nameReplacer.Replace(provider) + ".yaml"
}

// Connection implements catalog.Connector.
func (c *Catalog) Connection(provider string) catalog.Sink {
	return catalog.SinkFunc(func(ctx context.Context, m catalog.Mutation) error {
		return c.write(ctx, provider, m)
	})
}

func (c *Catalog) write(ctx context.Context, provider string, m catalog.Mutation) error {
	if m.Type != catalog.MutationFull {
		return errors.NewValidationError("type", m.Type, "only full mutations are supported")
	}

	doc := Document{
		Provider:    provider,
		GeneratedAt: c.now().UTC(),
		Entities:    make([]catalog.Entity, 0, len(m.Entities)),
	}
	for _, d := range m.Entities {
		if err := d.Entity.Validate(); err != nil {
			return err
		}
		doc.Entities = append(doc.Entities, d.Entity)
	}
	slices.SortStableFunc(doc.Entities, func(a, b catalog.Entity) int {
		return strings.Compare(a.Ref(), b.Ref())
	})

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapParse("yaml", provider, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.FileFor(provider)
	if err := writeAtomic(c.basePath, path, data); err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Str(logging.FieldProvider, provider).
		Str("path", path).
		Int("entities", len(doc.Entities)).
		Msg("Wrote snapshot")
	return nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".snapshot-*.yaml")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}

// Load reads the snapshot last written for provider.
func (c *Catalog) Load(provider string) (*Document, error) {
	path := c.FileFor(provider)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &doc, nil
}
