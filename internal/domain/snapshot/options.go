package snapshot

import (
	"fmt"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
)

// Option sets a rule checked on incoming snapshot data.
type Option func(*rules)

type rules struct {
	gpValues []int
}

// WithGPValues restricts scoresheet GP to the given values. No values
// accepts any GP.
func WithGPValues(values ...int) Option {
	return func(r *rules) { r.gpValues = values }
}

func newRules(opts []Option) rules {
	var r rules
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r rules) scoresheet(teamID string, s *model.Scoresheet) error {
	if s.GP == nil || len(r.gpValues) == 0 {
		return nil
	}
	if !slices.Contains(r.gpValues, *s.GP) {
		return fmt.Errorf("%w: gp %d of %s round %d not in %v", ErrInvalidEvent, *s.GP, teamID, s.Round, r.gpValues)
	}
	return nil
}

// Validate checks a whole replacement snapshot against the rules.
func Validate(snap *model.Snapshot, opts ...Option) error {
	r := newRules(opts)
	for i := range snap.Teams {
		t := &snap.Teams[i]
		for j := range t.Scoresheets {
			if err := r.scoresheet(t.ID, &t.Scoresheets[j]); err != nil {
				return err
			}
		}
	}
	return nil
}
