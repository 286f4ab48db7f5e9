package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
)

// RobotPerformance returns up to count teams with robot game scores, best
// robot game rank first. Ties fall back to team number.
func RobotPerformance(teams []model.Team, ranks map[string]Ranks, count int) []string {
	pool := make([]model.Team, 0, len(teams))
	for i := range teams {
		if len(teams[i].Scoresheets) > 0 {
			pool = append(pool, teams[i])
		}
	}
	slices.SortFunc(pool, func(a, b model.Team) int {
		if c := cmp.Compare(ranks[a.ID].RobotGame, ranks[b.ID].RobotGame); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return head(pool, count)
}

// Advancing selects the teams that advance to the next tournament level.
// percent of all teams advance, champions included; the remaining places
// go to non-champions by average rank, then core values rank, then team
// number.
func Advancing(teams []model.Team, ranks map[string]Ranks, champions []string, percent float64) []string {
	if percent <= 0 {
		return []string{}
	}
	count := int(math.Round(float64(len(teams))*percent/100)) - len(champions)

	pool := make([]model.Team, 0, len(teams))
	for i := range teams {
		if !slices.Contains(champions, teams[i].ID) {
			pool = append(pool, teams[i])
		}
	}
	slices.SortFunc(pool, func(a, b model.Team) int {
		ra, rb := ranks[a.ID], ranks[b.ID]
		if c := cmp.Compare(ra.Average(), rb.Average()); c != 0 {
			return c
		}
		if c := cmp.Compare(ra.CoreValues, rb.CoreValues); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return head(pool, count)
}

func head(teams []model.Team, n int) []string {
	out := []string{}
	for i := 0; i < len(teams) && i < n; i++ {
		out = append(out, teams[i].ID)
	}
	return out
}
