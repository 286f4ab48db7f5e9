package deliberation

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/picklist"
	"github.com/okian/deliberation/internal/domain/ranking"
)

func stageIndex(s model.Stage) int {
	return slices.Index(model.Stages(), s)
}

func (m *Machine) startFinal(st model.State, now time.Time) (Decision, error) {
	f := &st.Final
	if f.Status == model.StatusCompleted {
		return noop(st), nil
	}
	changed := false
	if f.Status == model.StatusNotStarted {
		f.Status = model.StatusInProgress
		f.StartedAt = &now
		changed = true
	}
	if f.StageStatus[f.Stage] == model.StatusNotStarted {
		f.StageStatus[f.Stage] = model.StatusInProgress
		changed = true
	}
	if !changed {
		return noop(st), nil
	}
	return accept(st), nil
}

func (m *Machine) advance(st model.State, snap *model.Snapshot, cmd *model.Command) (Decision, error) {
	f := &st.Final
	if cmd.Stage != "" {
		if !cmd.Stage.Valid() {
			return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStage, cmd.Stage)
		}
		switch from, cur := stageIndex(cmd.Stage), stageIndex(f.Stage); {
		case from < cur:
			return noop(st), nil
		case from > cur:
			return Decision{}, fmt.Errorf("%w: cannot leave %s while at %s", ErrInvalidStageTransition, cmd.Stage, f.Stage)
		}
	}
	if f.Stage == model.StageReview {
		return Decision{}, fmt.Errorf("%w: review is closed by approval", ErrInvalidStageTransition)
	}
	if f.Status != model.StatusInProgress || f.StageStatus[f.Stage] != model.StatusInProgress {
		return Decision{}, fmt.Errorf("%w: %s is %s", ErrInvalidStageTransition, f.Stage, f.StageStatus[f.Stage])
	}
	if err := m.complete(f, snap); err != nil {
		return Decision{}, err
	}

	switch f.Stage {
	case model.StageChampions:
		m.assignChampionsOutcome(f, snap, st.Picklists())
	case model.StageCoreAwards:
		m.assignAutomatic(f, snap)
	}
	f.StageStatus[f.Stage] = model.StatusCompleted
	next := model.Stages()[stageIndex(f.Stage)+1]
	if next == model.StageOptionalAwards && len(m.optionalAwards(snap)) == 0 {
		f.StageStatus[next] = model.StatusCompleted
		next = model.StageReview
	}
	f.Stage = next
	f.StageStatus[next] = model.StatusNotStarted
	return accept(st), nil
}

// complete checks the completeness predicate of the current stage.
func (m *Machine) complete(f *model.FinalDeliberation, snap *model.Snapshot) error {
	switch f.Stage {
	case model.StageChampions:
		for place := 1; place <= snap.AwardCount(model.AwardChampions); place++ {
			if f.Champions[place] == "" {
				return fmt.Errorf("%w: champions place %d is not assigned", ErrInvalidStageTransition, place)
			}
		}
	case model.StageCoreAwards:
		for _, c := range model.Categories() {
			want := snap.AwardCount(string(c))
			if got := len(f.Awards[string(c)]); got != want {
				return fmt.Errorf("%w: %s has %d of %d winners", ErrInvalidStageTransition, c, got, want)
			}
		}
	case model.StageOptionalAwards:
		for _, a := range m.optionalAwards(snap) {
			if got := len(f.Awards[a.Name]); got < a.Count {
				return fmt.Errorf("%w: %s has %d of %d winners", ErrInvalidStageTransition, a.Name, got, a.Count)
			}
		}
	}
	return nil
}

// optionalAwards lists the optional awards decided by hand in the
// optional-awards stage.
func (m *Machine) optionalAwards(snap *model.Snapshot) []model.Award {
	var out []model.Award
	for _, a := range snap.Awards {
		if a.Optional && a.Count > 0 && !m.automatic(a.Name) {
			out = append(out, a)
		}
	}
	return out
}

// assignAutomatic fills the auto-assigned award with the best total ranked
// active teams that hold no other award yet.
func (m *Machine) assignAutomatic(f *model.FinalDeliberation, snap *model.Snapshot) {
	count := snap.AwardCount(m.autoAssigned)
	if count == 0 {
		return
	}
	taken := make(map[string]bool)
	for _, id := range f.Champions {
		taken[id] = true
	}
	for name, ids := range f.Awards {
		if name == m.autoAssigned || slices.Contains(m.exemptAwards, name) {
			continue
		}
		for _, id := range ids {
			taken[id] = true
		}
	}

	var pool []model.Team
	for i := range snap.Teams {
		if snap.Teams[i].Active() && !taken[snap.Teams[i].ID] {
			pool = append(pool, snap.Teams[i])
		}
	}
	ranks := ranking.Compute(pool, m.scorer.ComputeAll(pool), nil)
	slices.SortStableFunc(pool, func(a, b model.Team) int {
		if ranks[a.ID].Total != ranks[b.ID].Total {
			return ranks[a.ID].Total - ranks[b.ID].Total
		}
		return a.Number - b.Number
	})

	winners := []string{}
	for i := 0; i < len(pool) && i < count; i++ {
		winners = append(winners, pool[i].ID)
	}
	f.Awards[m.autoAssigned] = winners
}

// assignChampionsOutcome fills robot performance by robot game rank and
// selects the advancing teams once champions are placed.
func (m *Machine) assignChampionsOutcome(f *model.FinalDeliberation, snap *model.Snapshot, picklists map[model.Category][]string) {
	var pool []model.Team
	for i := range snap.Teams {
		if snap.Teams[i].Active() {
			pool = append(pool, snap.Teams[i])
		}
	}
	ranks := ranking.Compute(pool, m.scorer.ComputeAll(pool), picklists)

	if count := snap.AwardCount(model.AwardRobotPerformance); count > 0 {
		f.Awards[model.AwardRobotPerformance] = ranking.RobotPerformance(pool, ranks, count)
	}
	if m.advancementPercent > 0 {
		champions := make([]string, 0, len(f.Champions))
		for _, id := range f.Champions {
			champions = append(champions, id)
		}
		f.Awards[model.AwardAdvancement] = ranking.Advancing(pool, ranks, champions, m.advancementPercent)
	}
}

// stageOf returns the stage an award is decided in.
func (m *Machine) stageOf(a model.Award) model.Stage {
	switch {
	case a.Name == model.AwardChampions:
		return model.StageChampions
	case model.Category(a.Name).Valid():
		return model.StageCoreAwards
	case a.Optional:
		return model.StageOptionalAwards
	}
	return ""
}

func (m *Machine) updateAward(st model.State, snap *model.Snapshot, cmd *model.Command) (Decision, error) {
	f := &st.Final
	award, ok := snap.Award(cmd.Award)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAward, cmd.Award)
	}
	stage := m.stageOf(award)
	if stage == "" || m.automatic(award.Name) {
		return Decision{}, fmt.Errorf("%w: %s is not decided by deliberation", ErrUnknownAward, award.Name)
	}
	if f.Status != model.StatusInProgress || f.Stage != stage || f.StageStatus[stage] != model.StatusInProgress {
		return Decision{}, fmt.Errorf("%w: %s is decided in %s, current stage %s is %s",
			ErrNotInProgress, award.Name, stage, f.Stage, f.StageStatus[f.Stage])
	}
	if len(cmd.Winners) > award.Count {
		return Decision{}, fmt.Errorf("%w: %s takes %d winners, got %d",
			picklist.ErrCapacityExceeded, award.Name, award.Count, len(cmd.Winners))
	}

	seen := make(map[string]bool, len(cmd.Winners))
	for _, id := range cmd.Winners {
		if id == "" && stage == model.StageChampions {
			continue
		}
		if seen[id] {
			return Decision{}, fmt.Errorf("%w: %s", picklist.ErrAlreadyPresent, id)
		}
		seen[id] = true
		if err := activeTeam(snap, id); err != nil {
			return Decision{}, err
		}
	}

	if stage == model.StageChampions {
		f.Champions = make(map[int]string, len(cmd.Winners))
		for i, id := range cmd.Winners {
			if id != "" {
				f.Champions[i+1] = id
			}
		}
	} else {
		f.Awards[award.Name] = slices.Clone(cmd.Winners)
	}

	if err := picklist.ValidateExclusiveWinners(f.Awards, f.Champions, m.exemptAwards...); err != nil {
		return Decision{}, err
	}
	return accept(st), nil
}

func (m *Machine) updateManualEligibility(st model.State, snap *model.Snapshot, cmd *model.Command) (Decision, error) {
	f := &st.Final
	if cmd.Stage != model.StageCoreAwards && cmd.Stage != model.StageOptionalAwards {
		return Decision{}, fmt.Errorf("%w: %q has no manual eligibility", ErrUnknownStage, cmd.Stage)
	}
	if f.Status == model.StatusCompleted {
		return Decision{}, fmt.Errorf("%w: final deliberation already completed", ErrInvalidStageTransition)
	}

	list := make([]string, 0, len(cmd.Teams))
	for _, id := range cmd.Teams {
		if slices.Contains(list, id) {
			continue
		}
		if err := activeTeam(snap, id); err != nil {
			return Decision{}, err
		}
		list = append(list, id)
	}

	if cmd.Stage == model.StageCoreAwards {
		f.CoreAwardsManualEligibility = list
	} else {
		f.OptionalAwardsManualEligibility = list
	}
	return accept(st), nil
}

func (m *Machine) approve(st model.State, now time.Time) (Decision, error) {
	f := &st.Final
	if f.Stage != model.StageReview {
		return Decision{}, fmt.Errorf("%w: approval only in review, current stage %s", ErrInvalidStageTransition, f.Stage)
	}
	if f.Status == model.StatusCompleted {
		return Decision{}, fmt.Errorf("%w: final deliberation already completed", ErrInvalidStageTransition)
	}
	f.StageStatus[model.StageReview] = model.StatusCompleted
	f.Status = model.StatusCompleted
	f.CompletedAt = &now
	return accept(st), nil
}
