package dedupe

// Option configures the in-memory Deduper.
type Option func(*requestDeduper)

// WithMaxSize bounds the number of remembered ids. Zero or less disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *requestDeduper) {
		d.maxSize = maxSize
	}
}
