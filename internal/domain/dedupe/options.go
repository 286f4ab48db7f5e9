package dedupe

// Option configures the in-memory deduper.
type Option func(*window)

// WithMaxSize bounds how many recent ids are remembered.
// Zero or negative keeps every id.
func WithMaxSize(n int) Option {
	return func(w *window) {
		w.limit = n
	}
}
