// Package suggestion proposes the next team to add to a picklist.
package suggestion

import (
	"cmp"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/scoring"
)

// Candidate is one eligible, not yet picked team.
type Candidate struct {
	TeamID     string  `json:"team_id"`
	Number     int     `json:"number"`
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
}

// Candidates builds the candidate pool of category c from the eligible
// ids, in snapshot order.
func Candidates(snap *model.Snapshot, eligible []string, raw, normalized map[string]scoring.Scores, c model.Category) []Candidate {
	dim := scoring.ForCategory(c)
	out := make([]Candidate, 0, len(eligible))
	for _, id := range eligible {
		t, ok := snap.Team(id)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			TeamID:     id,
			Number:     t.Number,
			Raw:        raw[id].Get(dim),
			Normalized: normalized[id].Get(dim),
		})
	}
	return out
}

// Next returns the candidate with the highest raw score. A single
// candidate is always suggested. When the top two tie exactly on both raw
// and normalized score no suggestion is made.
func Next(pool []Candidate) (Candidate, bool) {
	switch len(pool) {
	case 0:
		return Candidate{}, false
	case 1:
		return pool[0], true
	}

	sorted := slices.Clone(pool)
	slices.SortFunc(sorted, func(a, b Candidate) int {
		if c := cmp.Compare(b.Raw, a.Raw); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Normalized, a.Normalized); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})

	if sorted[0].Raw == sorted[1].Raw && sorted[0].Normalized == sorted[1].Normalized {
		return Candidate{}, false
	}
	return sorted[0], true
}
