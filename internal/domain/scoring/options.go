package scoring

import "github.com/okian/deliberation/internal/season"

// Option applies a configuration option to the Computer.
type Option func(*Computer)

// WithSeason sets the season whose GP default and core-values field
// subset are applied.
func WithSeason(s *season.Season) Option {
	return func(c *Computer) {
		if s != nil {
			c.season = s
		}
	}
}
