package reconciler

import "context"

// Source is the vendor-specific capability injected into a collection.
// Fetch returns the complete upstream inventory for one cycle and Identify
// returns the vendor-native identifier of one instance.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
	Identify(instance T) string
}

// Locator is implemented by sources whose location annotations differ from
// the vendor identifier.
type Locator[T any] interface {
	Location(instance T) string
}

// Annotator is implemented by sources that compute additional baseline
// annotations for an instance, such as a secondary vendor key.
type Annotator[T any] interface {
	Annotations(instance T) map[string]string
}

// SourceFuncs adapts a pair of functions to the Source interface.
type SourceFuncs[T any] struct {
	FetchFunc    func(ctx context.Context) ([]T, error)
	IdentifyFunc func(instance T) string
}

// Fetch implements Source.
func (s SourceFuncs[T]) Fetch(ctx context.Context) ([]T, error) {
	return s.FetchFunc(ctx)
}

// Identify implements Source.
func (s SourceFuncs[T]) Identify(instance T) string {
	return s.IdentifyFunc(instance)
}
