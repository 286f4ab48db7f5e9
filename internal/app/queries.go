package service

import (
	"context"
	"fmt"

	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/deliberation"
	"github.com/okian/deliberation/internal/domain/eligibility"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/ranking"
	"github.com/okian/deliberation/internal/domain/scoring"
	"github.com/okian/deliberation/internal/domain/suggestion"
	"github.com/okian/deliberation/pkg/metrics"
)

// Derived holds every read model computed from one committed view. It is
// built once per state and snapshot version and shared by all readers.
type Derived struct {
	StateVersion    int64
	SnapshotVersion int64

	Raw        map[string]scoring.Scores
	Normalized map[string]scoring.Scores
	Rooms      scoring.RoomMetricsMap
	Division   scoring.Scores
	Ranks      map[string]ranking.Ranks
	Anomalies  []ranking.Anomaly

	view *view
}

// ScoresView is the response of Scores.
type ScoresView struct {
	Raw        map[string]scoring.Scores `json:"raw"`
	Normalized map[string]scoring.Scores `json:"normalized"`
}

// RoomsView is the response of RoomMetrics.
type RoomsView struct {
	Rooms    scoring.RoomMetricsMap `json:"rooms"`
	Division scoring.Scores         `json:"division"`
}

// RanksView is the response of Ranks.
type RanksView struct {
	Ranks     map[string]ranking.Ranks `json:"ranks"`
	Anomalies []ranking.Anomaly        `json:"anomalies"`
}

// Suggestion is the response of Suggest. Team is nil when no candidate
// stands out.
type Suggestion struct {
	Category model.Category         `json:"category"`
	Team     *suggestion.Candidate  `json:"team"`
	Pool     []suggestion.Candidate `json:"pool"`
}

// derive returns the read models of the current view, building them at
// most once per version pair.
func (s *Service) derive() *Derived {
	v := s.current.Load()
	if d := s.derived.Load(); d != nil && d.view == v {
		return d
	}

	key := fmt.Sprintf("%d/%d", v.state.Version, v.snap.Version)
	out, _, _ := s.builds.Do(key, func() (interface{}, error) {
		d := s.build(v)
		s.derived.Store(d)
		return d, nil
	})
	return out.(*Derived)
}

func (s *Service) build(v *view) *Derived {
	metrics.RecordViewBuild("derived")

	teams := v.snap.Teams
	raw := s.computer.ComputeAll(teams)
	rooms := scoring.ComputeRoomMetrics(teams, raw)
	picklists := v.state.Picklists()
	return &Derived{
		StateVersion:    v.state.Version,
		SnapshotVersion: v.snap.Version,
		Raw:             raw,
		Normalized:      scoring.NormalizeAll(teams, raw, rooms),
		Rooms:           rooms,
		Division:        rooms.DivisionAverages(),
		Ranks:           ranking.Compute(teams, raw, picklists),
		Anomalies:       ranking.Anomalies(picklists, raw),
		view:            v,
	}
}

// Scores returns raw and room-normalized scores keyed by team id.
func (s *Service) Scores(_ context.Context) ScoresView {
	d := s.derive()
	return ScoresView{Raw: d.Raw, Normalized: d.Normalized}
}

// RoomMetrics returns per-room averages and the division averages.
func (s *Service) RoomMetrics(_ context.Context) RoomsView {
	d := s.derive()
	return RoomsView{Rooms: d.Rooms, Division: d.Division}
}

// Ranks returns per-team ranks and the picklist order anomalies.
func (s *Service) Ranks(_ context.Context) RanksView {
	d := s.derive()
	anomalies := d.Anomalies
	if anomalies == nil {
		anomalies = []ranking.Anomaly{}
	}
	return RanksView{Ranks: d.Ranks, Anomalies: anomalies}
}

// Eligibility returns the eligible team ids for a category picklist or a
// final deliberation stage.
func (s *Service) Eligibility(_ context.Context, key string) ([]string, error) {
	d := s.derive()
	v := eligibility.View{Snapshot: &d.view.snap, State: &d.view.state, Scores: d.Raw}

	if c := model.Category(key); c.Valid() {
		return s.evaluator.ForCategory(&v, c), nil
	}
	st := model.Stage(key)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", deliberation.ErrUnknownStage, key)
	}
	ids := s.evaluator.ForStage(&v, st)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Suggest proposes the next team for category c's picklist.
func (s *Service) Suggest(_ context.Context, c model.Category) (Suggestion, error) {
	if !c.Valid() {
		return Suggestion{}, fmt.Errorf("%w: %q", deliberation.ErrUnknownCategory, c)
	}
	d := s.derive()
	v := eligibility.View{Snapshot: &d.view.snap, State: &d.view.state, Scores: d.Raw}

	pool := suggestion.Candidates(&d.view.snap, s.evaluator.ForCategory(&v, c), d.Raw, d.Normalized, c)
	out := Suggestion{Category: c, Pool: pool}
	if next, ok := suggestion.Next(pool); ok {
		out.Team = &next
	}
	return out, nil
}

// Nominations lists the award nominations of every active team that has
// at least one.
func (s *Service) Nominations(_ context.Context) map[string][]string {
	v := s.current.Load()
	out := make(map[string][]string)
	for i := range v.snap.Teams {
		t := &v.snap.Teams[i]
		if !t.Active() {
			continue
		}
		if n := eligibility.Nominations(t); len(n) > 0 {
			out[t.ID] = n
		}
	}
	return out
}

// OverCapacity lists the categories whose picklist no longer fits the
// capacity of the current snapshot.
func (s *Service) OverCapacity(_ context.Context) []model.Category {
	v := s.current.Load()
	return s.machine.OverCapacity(&v.state, &v.snap)
}

// History returns every saved version of the event state, oldest first.
func (s *Service) History(ctx context.Context) ([]model.State, error) {
	h, ok := s.store.(repository.Historian)
	if !ok {
		return nil, ErrNoHistory
	}
	return h.History(ctx, s.eventID)
}
