package catalog

import (
	"maps"
	"slices"
)

// Merge returns a new entity combining base and override. It never mutates
// either input.
//
// Map-valued fields merge key by key and override wins on shared keys.
// Nested maps inside Spec merge recursively. Scalar and slice fields take the
// override value only when it is non-zero, so an override that leaves a field
// empty keeps the base value.
func Merge(base, override Entity) Entity {
	return Entity{
		APIVersion: pick(base.APIVersion, override.APIVersion),
		Kind:       pick(base.Kind, override.Kind),
		Metadata: Metadata{
			Name:        pick(base.Metadata.Name, override.Metadata.Name),
			Namespace:   pick(base.Metadata.Namespace, override.Metadata.Namespace),
			Title:       pick(base.Metadata.Title, override.Metadata.Title),
			Description: pick(base.Metadata.Description, override.Metadata.Description),
			Labels:      mergeStrings(base.Metadata.Labels, override.Metadata.Labels),
			Annotations: mergeStrings(base.Metadata.Annotations, override.Metadata.Annotations),
			Tags:        pickSlice(base.Metadata.Tags, override.Metadata.Tags),
		},
		Spec: mergeValues(base.Spec, override.Spec),
	}
}

// Clone returns a deep copy of e.
func Clone(e Entity) Entity {
	return Merge(Entity{}, e)
}

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func pickSlice(base, override []string) []string {
	if len(override) > 0 {
		return slices.Clone(override)
	}
	return slices.Clone(base)
}

func mergeStrings(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

func mergeValues(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range override {
		if bm, ok := out[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				out[k] = mergeValues(bm, om)
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return mergeValues(nil, t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}
