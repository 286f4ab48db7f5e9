package scoring

import (
	"maps"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
)

// RoomMetrics is the per-room average of every dimension. It is derived
// and never stored.
type RoomMetrics struct {
	RoomID    string `json:"room_id"`
	Averages  Scores `json:"averages"`
	TeamCount int    `json:"team_count"`
}

// RoomMetricsMap is keyed by room id.
type RoomMetricsMap map[string]RoomMetrics

// ComputeRoomMetrics averages scores per room over arrived teams with a
// room assignment. Rooms without such teams are absent from the result.
func ComputeRoomMetrics(teams []model.Team, scores map[string]Scores) RoomMetricsMap {
	sums := make(map[string]*RoomMetrics)
	for i := range teams {
		t := &teams[i]
		if !t.Arrived || t.RoomID == "" {
			continue
		}
		m, ok := sums[t.RoomID]
		if !ok {
			m = &RoomMetrics{RoomID: t.RoomID}
			sums[t.RoomID] = m
		}
		s := scores[t.ID]
		for _, d := range Dimensions() {
			m.Averages.set(d, m.Averages.Get(d)+s.Get(d))
		}
		m.TeamCount++
	}

	out := make(RoomMetricsMap, len(sums))
	for id, m := range sums {
		n := float64(m.TeamCount)
		for _, d := range Dimensions() {
			m.Averages.set(d, m.Averages.Get(d)/n)
		}
		out[id] = *m
	}
	return out
}

// DivisionAverages is the unweighted mean of every room's averages. Rooms
// are summed in id order so the result is identical on every call.
func (m RoomMetricsMap) DivisionAverages() Scores {
	var div Scores
	var rooms float64
	for _, id := range slices.Sorted(maps.Keys(m)) {
		r := m[id]
		if r.TeamCount == 0 {
			continue
		}
		rooms++
		for _, d := range Dimensions() {
			div.set(d, div.Get(d)+r.Averages.Get(d))
		}
	}
	if rooms == 0 {
		return div
	}
	for _, d := range Dimensions() {
		div.set(d, div.Get(d)/rooms)
	}
	return div
}

// Normalize scales raw by divisionAverage/roomAverage per dimension.
// Without a room or room aggregate the raw score is returned; a dimension
// whose room average is zero stays raw.
func Normalize(raw Scores, roomID string, m RoomMetricsMap) Scores {
	return normalize(raw, roomID, m, m.DivisionAverages())
}

func normalize(raw Scores, roomID string, m RoomMetricsMap, div Scores) Scores {
	if roomID == "" {
		return raw
	}
	room, ok := m[roomID]
	if !ok || room.TeamCount == 0 {
		return raw
	}
	out := raw
	for _, d := range Dimensions() {
		avg := room.Averages.Get(d)
		if avg == 0 {
			continue
		}
		out.set(d, raw.Get(d)*(div.Get(d)/avg))
	}
	return out
}

// NormalizeAll normalizes every team's scores keyed by team id.
func NormalizeAll(teams []model.Team, scores map[string]Scores, m RoomMetricsMap) map[string]Scores {
	div := m.DivisionAverages()
	out := make(map[string]Scores, len(teams))
	for i := range teams {
		out[teams[i].ID] = normalize(scores[teams[i].ID], teams[i].RoomID, m, div)
	}
	return out
}
