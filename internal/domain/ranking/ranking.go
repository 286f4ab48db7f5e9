// Package ranking produces tie-aware competition ranks with picklist
// precedence.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/scoring"
)

// Ranks is the per-category, robot game and total rank of one team.
// Ranks are 1-based.
type Ranks struct {
	InnovationProject int `json:"innovation-project"`
	RobotDesign       int `json:"robot-design"`
	CoreValues        int `json:"core-values"`
	RobotGame         int `json:"robot-game"`
	Total             int `json:"total"`
}

// Average is the mean of the three category ranks and the robot game rank.
func (r Ranks) Average() float64 {
	return float64(r.InnovationProject+r.RobotDesign+r.CoreValues+r.RobotGame) / 4
}

// Get returns the rank for category c.
func (r Ranks) Get(c model.Category) int {
	switch c {
	case model.InnovationProject:
		return r.InnovationProject
	case model.RobotDesign:
		return r.RobotDesign
	case model.CoreValues:
		return r.CoreValues
	}
	return 0
}

func (r *Ranks) set(c model.Category, v int) {
	switch c {
	case model.InnovationProject:
		r.InnovationProject = v
	case model.RobotDesign:
		r.RobotDesign = v
	case model.CoreValues:
		r.CoreValues = v
	}
}

// Compute ranks every team. Within a category, picklisted teams take ranks
// 1..n in picklist order and every other team ranks below them by
// descending raw score. RobotGame orders by best scoresheet, then second
// best and so on. Total is pure score order. Ties share a rank and
// the next distinct score gets tiedRank+tiedCount.
func Compute(teams []model.Team, scores map[string]scoring.Scores, picklists map[model.Category][]string) map[string]Ranks {
	out := make(map[string]Ranks, len(teams))
	known := make(map[string]bool, len(teams))
	for i := range teams {
		known[teams[i].ID] = true
		out[teams[i].ID] = Ranks{}
	}

	for _, c := range model.Categories() {
		dim := scoring.ForCategory(c)
		placed := make(map[string]bool)
		pos := 0
		for _, id := range picklists[c] {
			if !known[id] || placed[id] {
				continue
			}
			placed[id] = true
			pos++
			r := out[id]
			r.set(c, pos)
			out[id] = r
		}

		rest := make([]string, 0, len(teams)-pos)
		for i := range teams {
			if !placed[teams[i].ID] {
				rest = append(rest, teams[i].ID)
			}
		}
		for id, rank := range competition(rest, scores, dim, pos) {
			r := out[id]
			r.set(c, rank)
			out[id] = r
		}
	}

	for id, rank := range robotGame(teams) {
		r := out[id]
		r.RobotGame = rank
		out[id] = r
	}

	all := make([]string, 0, len(teams))
	for i := range teams {
		all = append(all, teams[i].ID)
	}
	for id, rank := range competition(all, scores, scoring.DimTotal, 0) {
		r := out[id]
		r.Total = rank
		out[id] = r
	}
	return out
}

// competition assigns offset+1-based competition ranks (1,1,3) by
// descending score on dim.
func competition(ids []string, scores map[string]scoring.Scores, dim scoring.Dimension, offset int) map[string]int {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(scores[b].Get(dim), scores[a].Get(dim)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	out := make(map[string]int, len(sorted))
	rank := 0
	for i, id := range sorted {
		if i == 0 || scores[id].Get(dim) != scores[sorted[i-1]].Get(dim) {
			rank = i + 1
		}
		out[id] = offset + rank
	}
	return out
}

// RobotGameScores returns the team's scoresheet scores, best first.
func RobotGameScores(t *model.Team) []float64 {
	out := make([]float64, 0, len(t.Scoresheets))
	for _, s := range t.Scoresheets {
		out = append(out, s.Score)
	}
	slices.SortFunc(out, func(a, b float64) int { return cmp.Compare(b, a) })
	return out
}

// compareScoreLists orders a before b when a's best score is higher,
// falling back to the next best. A missing score loses to any score.
func compareScoreLists(a, b []float64) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		switch {
		case i >= len(a):
			return 1
		case i >= len(b):
			return -1
		}
		if c := cmp.Compare(b[i], a[i]); c != 0 {
			return c
		}
	}
	return 0
}

func robotGame(teams []model.Team) map[string]int {
	type entry struct {
		id     string
		scores []float64
	}
	entries := make([]entry, 0, len(teams))
	for i := range teams {
		entries = append(entries, entry{id: teams[i].ID, scores: RobotGameScores(&teams[i])})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := compareScoreLists(a.scores, b.scores); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	out := make(map[string]int, len(entries))
	rank := 0
	for i, e := range entries {
		if i == 0 || compareScoreLists(e.scores, entries[i-1].scores) != 0 {
			rank = i + 1
		}
		out[e.id] = rank
	}
	return out
}
