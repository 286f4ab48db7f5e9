package eligibility

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithChampionsPool overrides how many top total ranks are champions
// candidates.
func WithChampionsPool(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.championsPool = n
		}
	}
}
