// Package snapshot folds incremental upstream events into the read-only
// snapshot the engine computes over.
package snapshot

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
)

// Apply returns a new snapshot with ev applied. The input is never
// mutated, so readers holding it keep a consistent view.
func Apply(snap *model.Snapshot, ev *model.Event, opts ...Option) (model.Snapshot, error) {
	r := newRules(opts)
	out := snap.Clone()

	switch ev.Kind {
	case model.EventTeamUpserted:
		if ev.Team == nil || ev.Team.ID == "" {
			return model.Snapshot{}, fmt.Errorf("%w: %s without team", ErrInvalidEvent, ev.Kind)
		}
		t := ev.Team.Clone()
		for j := range t.Scoresheets {
			if err := r.scoresheet(t.ID, &t.Scoresheets[j]); err != nil {
				return model.Snapshot{}, err
			}
		}
		if i := index(&out, t.ID); i >= 0 {
			out.Teams[i] = t
		} else {
			out.Teams = append(out.Teams, t)
		}

	case model.EventAwardsReplaced:
		out.Awards = make([]model.Award, len(ev.Awards))
		for i, a := range ev.Awards {
			a.Winners = slices.Clone(a.Winners)
			out.Awards[i] = a
		}

	case model.EventRoomsReplaced:
		out.Rooms = slices.Clone(ev.Rooms)

	case model.EventTeamArrived, model.EventTeamDisqualified, model.EventSessionUpdated,
		model.EventRubricFieldUpdated, model.EventRubricNominationUpdated, model.EventScoresheetUpdated:
		i := index(&out, ev.TeamID)
		if i < 0 {
			return model.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownTeam, ev.TeamID)
		}
		if err := applyTeam(&out.Teams[i], ev, r); err != nil {
			return model.Snapshot{}, err
		}

	default:
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	out.Version++
	return out, nil
}

func applyTeam(t *model.Team, ev *model.Event, r rules) error {
	switch ev.Kind {
	case model.EventTeamArrived:
		t.Arrived = ev.Flag
	case model.EventTeamDisqualified:
		t.Disqualified = ev.Flag
	case model.EventSessionUpdated:
		t.SessionStatus = ev.SessionStatus
		if ev.RoomID != "" {
			t.RoomID = ev.RoomID
		}
	case model.EventRubricFieldUpdated:
		if !ev.Category.Valid() || ev.Field == "" {
			return fmt.Errorf("%w: rubric field %q of %q", ErrInvalidEvent, ev.Field, ev.Category)
		}
		r := rubric(t, ev.Category)
		if r.Fields == nil {
			r.Fields = map[string]*int{}
		}
		var v *int
		if ev.Value != nil {
			val := *ev.Value
			v = &val
		}
		r.Fields[ev.Field] = v
		t.Rubrics[ev.Category] = r
	case model.EventRubricNominationUpdated:
		if !ev.Category.Valid() || ev.Award == "" {
			return fmt.Errorf("%w: nomination %q of %q", ErrInvalidEvent, ev.Award, ev.Category)
		}
		r := rubric(t, ev.Category)
		if r.Awards == nil {
			r.Awards = map[string]bool{}
		}
		r.Awards[ev.Award] = ev.Flag
		t.Rubrics[ev.Category] = r
	case model.EventScoresheetUpdated:
		if ev.Scoresheet == nil {
			return fmt.Errorf("%w: %s without scoresheet", ErrInvalidEvent, ev.Kind)
		}
		if err := r.scoresheet(t.ID, ev.Scoresheet); err != nil {
			return err
		}
		s := *ev.Scoresheet
		if s.GP != nil {
			gp := *s.GP
			s.GP = &gp
		}
		i := slices.IndexFunc(t.Scoresheets, func(x model.Scoresheet) bool { return x.Round == s.Round })
		if i >= 0 {
			t.Scoresheets[i] = s
		} else {
			t.Scoresheets = append(t.Scoresheets, s)
			slices.SortFunc(t.Scoresheets, func(a, b model.Scoresheet) int { return cmp.Compare(a.Round, b.Round) })
		}
	}
	return nil
}

func rubric(t *model.Team, c model.Category) model.Rubric {
	if t.Rubrics == nil {
		t.Rubrics = map[model.Category]model.Rubric{}
	}
	return t.Rubrics[c]
}

func index(s *model.Snapshot, id string) int {
	return slices.IndexFunc(s.Teams, func(t model.Team) bool { return t.ID == id })
}
