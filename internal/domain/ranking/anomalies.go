package ranking

import (
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/scoring"
)

// Anomaly flags a picklisted team placed above a team with a strictly
// higher raw category score.
type Anomaly struct {
	TeamID    string         `json:"team_id"`
	Category  model.Category `json:"category"`
	Position  int            `json:"position"`
	ScoreRank int            `json:"score_rank"`
}

// Anomalies lists every picklist entry that outranks a later entry with a
// strictly higher raw score. Ties are never anomalous.
func Anomalies(picklists map[model.Category][]string, scores map[string]scoring.Scores) []Anomaly {
	var out []Anomaly
	for _, c := range model.Categories() {
		list := picklists[c]
		if len(list) < 2 {
			continue
		}
		dim := scoring.ForCategory(c)
		ranks := competition(list, scores, dim, 0)
		for i, id := range list {
			for _, later := range list[i+1:] {
				if scores[later].Get(dim) > scores[id].Get(dim) {
					out = append(out, Anomaly{TeamID: id, Category: c, Position: i + 1, ScoreRank: ranks[id]})
					break
				}
			}
		}
	}
	return out
}
