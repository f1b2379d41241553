package differ

// Option is a functional option for configuring Differ.
type Option func(*differ)

// WithIgnoredAnnotations excludes annotation keys from comparison, e.g.
// values that change on every cycle.
func WithIgnoredAnnotations(keys ...string) Option {
	return func(d *differ) {
		for _, k := range keys {
			d.ignoreAnnotations[k] = true
		}
	}
}
