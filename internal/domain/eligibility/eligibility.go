// Package eligibility decides which teams are candidates at each
// deliberation step. Non-arrival and disqualification exclude a team
// everywhere; manual overrides can only add eligibility on top.
package eligibility

import (
	"slices"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/ranking"
	"github.com/okian/deliberation/internal/domain/scoring"
)

// View is the immutable input of one evaluation pass.
type View struct {
	Snapshot *model.Snapshot
	State    *model.State
	Scores   map[string]scoring.Scores
}

// Evaluator evaluates eligibility rules.
type Evaluator struct {
	championsPool int
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ForCategory returns the teams that may be added to category c's
// picklist: active, judging session completed and not already listed.
func (e *Evaluator) ForCategory(v *View, c model.Category) []string {
	listed := v.State.Categories[c].Picklist
	return e.filter(v, func(t *model.Team) bool {
		return t.SessionStatus == model.SessionCompleted && !slices.Contains(listed, t.ID)
	})
}

// ForChampions returns the active teams whose total rank among active
// teams is within the champions pool. Teams tied at the boundary are all
// included.
func (e *Evaluator) ForChampions(v *View) []string {
	pool := e.ChampionsPool(v.Snapshot)
	if pool <= 0 {
		return nil
	}
	var active []model.Team
	for i := range v.Snapshot.Teams {
		if v.Snapshot.Teams[i].Active() {
			active = append(active, v.Snapshot.Teams[i])
		}
	}
	ranks := ranking.Compute(active, v.Scores, nil)
	return e.filter(v, func(t *model.Team) bool {
		return ranks[t.ID].Total <= pool
	})
}

// ForCoreAwards returns the active teams listed in any category picklist
// or in the core-awards manual override list.
func (e *Evaluator) ForCoreAwards(v *View) []string {
	manual := v.State.Final.CoreAwardsManualEligibility
	return e.filter(v, func(t *model.Team) bool {
		if slices.Contains(manual, t.ID) {
			return true
		}
		for _, d := range v.State.Categories {
			if slices.Contains(d.Picklist, t.ID) {
				return true
			}
		}
		return false
	})
}

// ForOptionalAwards returns the active teams with at least one rubric
// award nomination or listed in the optional-awards manual override list.
func (e *Evaluator) ForOptionalAwards(v *View) []string {
	manual := v.State.Final.OptionalAwardsManualEligibility
	return e.filter(v, func(t *model.Team) bool {
		return slices.Contains(manual, t.ID) || Nominated(t)
	})
}

// ForStage dispatches to the rule of a final deliberation stage. Review
// has no candidate pool.
func (e *Evaluator) ForStage(v *View, s model.Stage) []string {
	switch s {
	case model.StageChampions:
		return e.ForChampions(v)
	case model.StageCoreAwards:
		return e.ForCoreAwards(v)
	case model.StageOptionalAwards:
		return e.ForOptionalAwards(v)
	}
	return nil
}

// ChampionsPool is the configured pool size, or the champions award
// count when unset.
func (e *Evaluator) ChampionsPool(snap *model.Snapshot) int {
	if e.championsPool > 0 {
		return e.championsPool
	}
	return snap.AwardCount(model.AwardChampions)
}

// Nominated reports whether any rubric carries an award nomination flag.
func Nominated(t *model.Team) bool {
	for _, r := range t.Rubrics {
		for _, on := range r.Awards {
			if on {
				return true
			}
		}
	}
	return false
}

// Nominations lists the awards team t is nominated for across rubrics.
func Nominations(t *model.Team) []string {
	var out []string
	for _, c := range model.Categories() {
		for name, on := range t.Rubrics[c].Awards {
			if on && !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	slices.Sort(out)
	return out
}

func (e *Evaluator) filter(v *View, keep func(*model.Team) bool) []string {
	out := []string{}
	for i := range v.Snapshot.Teams {
		t := &v.Snapshot.Teams[i]
		if t.Active() && keep(t) {
			out = append(out, t.ID)
		}
	}
	return out
}
