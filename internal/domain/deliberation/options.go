package deliberation

import (
	"github.com/okian/deliberation/internal/domain/scoring"
)

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithPicklistPolicy sets the picklist capacity policy.
func WithPicklistPolicy(maxAllowed int, multiplier float64) Option {
	return func(m *Machine) {
		if maxAllowed > 0 {
			m.picklistMax = maxAllowed
		}
		if multiplier > 0 {
			m.picklistMultiplier = multiplier
		}
	}
}

// WithExemptAwards sets the awards a team may hold on top of another.
func WithExemptAwards(names ...string) Option {
	return func(m *Machine) {
		if len(names) > 0 {
			m.exemptAwards = names
		}
	}
}

// WithAutoAssignedAward sets the optional award that is filled
// automatically when core awards close and is therefore left out of
// optional-awards completeness.
func WithAutoAssignedAward(name string) Option {
	return func(m *Machine) {
		if name != "" {
			m.autoAssigned = name
		}
	}
}

// WithAdvancementPercent sets the share of all teams, champions included,
// that advance when the champions stage closes. Zero disables advancement.
func WithAdvancementPercent(percent float64) Option {
	return func(m *Machine) {
		if percent >= 0 && percent <= 100 {
			m.advancementPercent = percent
		}
	}
}

// WithScorer sets the score computer used to rank automatic winners.
func WithScorer(c *scoring.Computer) Option {
	return func(m *Machine) {
		if c != nil {
			m.scorer = c
		}
	}
}
