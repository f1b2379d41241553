// Package provenance computes and applies the annotations that link every
// emitted catalog entity back to its vendor-native identifier and to the
// provider that produced it.
package provenance

import (
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// Location annotation keys understood by the catalog.
const (
	AnnotationLocation       = "backstage.io/managed-by-location"
	AnnotationOriginLocation = "backstage.io/managed-by-origin-location"
)

// Annotations computes the baseline provenance annotations for one instance.
// When location is empty the vendor id is used for both location annotations.
func Annotations(vendorKey, id, location string) map[string]string {
	if location == "" {
		location = id
	}
	return map[string]string{
		vendorKey:                id,
		AnnotationLocation:       location,
		AnnotationOriginLocation: location,
	}
}

// Enrich returns a copy of entity carrying the computed annotations.
// Annotations already set on entity take precedence over computed ones;
// keys present on only one side survive untouched.
func Enrich(entity catalog.Entity, computed map[string]string) catalog.Entity {
	base := catalog.Entity{Metadata: catalog.Metadata{Annotations: computed}}
	return catalog.Merge(base, entity)
}

// Check verifies that entity carries a non-empty value for every given key.
func Check(entity catalog.Entity, keys ...string) error {
	for _, key := range keys {
		if entity.Annotation(key) == "" {
			return errors.NewValidationError("metadata.annotations."+key, nil, "missing provenance annotation")
		}
	}
	return nil
}
