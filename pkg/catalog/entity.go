// Package catalog defines the target-catalog side of reconciliation: the
// entity shape every source produces, the full-snapshot mutation handed to a
// sink, and the structural merge used to combine entity fragments.
package catalog

import (
	"strings"

	"github.com/agentstation/catalogsync/pkg/errors"
)

// DefaultAPIVersion is the entity apiVersion used when a transform leaves it empty.
const DefaultAPIVersion = "backstage.io/v1alpha1"

// Entity is one catalog entity produced by a reconciliation cycle.
type Entity struct {
	APIVersion string         `json:"apiVersion" yaml:"apiVersion"`
	Kind       string         `json:"kind" yaml:"kind"`
	Metadata   Metadata       `json:"metadata" yaml:"metadata"`
	Spec       map[string]any `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// Metadata is the identifying and descriptive part of an entity.
type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Namespace   string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Ref returns kind:namespace/name, defaulting the namespace to "default".
func (e Entity) Ref() string {
	ns := e.Metadata.Namespace
	if ns == "" {
		ns = "default"
	}
	return e.Kind + ":" + ns + "/" + e.Metadata.Name
}

// Annotation returns the value of an annotation, or "" when unset.
func (e Entity) Annotation(key string) string {
	return e.Metadata.Annotations[key]
}

// Validate checks the fields every sink relies on.
func (e Entity) Validate() error {
	if e.Kind == "" {
		return errors.NewValidationError("kind", e.Kind, "cannot be empty")
	}
	if e.Metadata.Name == "" {
		return errors.NewValidationError("metadata.name", e.Metadata.Name, "cannot be empty")
	}
	return nil
}

// maxNameLength is the longest entity name accepted by the catalog.
const maxNameLength = 63

// SanitizeName turns an arbitrary vendor string into a valid entity name:
// characters outside [A-Za-z0-9-_.] become "-", leading and trailing
// separators are trimmed and the result is capped at 63 characters.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-_.")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], "-_.")
	}
	return name
}
