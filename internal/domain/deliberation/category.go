package deliberation

import (
	"fmt"
	"time"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/picklist"
)

func (m *Machine) category(st model.State, c model.Category) (model.CategoryDeliberation, error) {
	if !c.Valid() {
		return model.CategoryDeliberation{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	d, ok := st.Categories[c]
	if !ok {
		d = model.CategoryDeliberation{Category: c, Status: model.StatusNotStarted, Picklist: []string{}}
	}
	return d, nil
}

func (m *Machine) startCategory(st model.State, cmd *model.Command, now time.Time) (Decision, error) {
	d, err := m.category(st, cmd.Category)
	if err != nil {
		return Decision{}, err
	}
	switch d.Status {
	case model.StatusInProgress:
		return noop(st), nil
	case model.StatusCompleted:
		return Decision{}, fmt.Errorf("%w: %s deliberation already completed", ErrInvalidStageTransition, cmd.Category)
	}
	d.Status = model.StatusInProgress
	d.StartedAt = &now
	st.Categories[cmd.Category] = d
	return accept(st), nil
}

func (m *Machine) completeCategory(st model.State, cmd *model.Command) (Decision, error) {
	d, err := m.category(st, cmd.Category)
	if err != nil {
		return Decision{}, err
	}
	switch d.Status {
	case model.StatusCompleted:
		return noop(st), nil
	case model.StatusNotStarted:
		return Decision{}, fmt.Errorf("%w: %s deliberation not started", ErrInvalidStageTransition, cmd.Category)
	}
	d.Status = model.StatusCompleted
	st.Categories[cmd.Category] = d
	return accept(st), nil
}

func (m *Machine) editPicklist(st model.State, snap *model.Snapshot, cmd *model.Command) (Decision, error) {
	d, err := m.category(st, cmd.Category)
	if err != nil {
		return Decision{}, err
	}
	if d.Status != model.StatusInProgress {
		return Decision{}, fmt.Errorf("%w: %s is %s", ErrNotInProgress, cmd.Category, d.Status)
	}

	capacity := m.Capacity(snap)
	var next []string
	switch cmd.Kind {
	case model.CommandAddToPicklist:
		if err := judgedTeam(snap, cmd.TeamID); err != nil {
			return Decision{}, err
		}
		next, err = picklist.Append(d.Picklist, cmd.TeamID, capacity)
	case model.CommandRemoveFromPicklist:
		next = picklist.Remove(d.Picklist, cmd.TeamID)
		if len(next) == len(d.Picklist) {
			return noop(st), nil
		}
	case model.CommandReorderPicklist:
		next, err = picklist.Reorder(d.Picklist, cmd.FromIndex, cmd.ToIndex)
	case model.CommandUpdatePicklist:
		for _, id := range cmd.Picklist {
			if _, ok := snap.Team(id); !ok {
				return Decision{}, fmt.Errorf("%w: %w: %s", ErrUnknownTeam, picklist.ErrNotPresent, id)
			}
		}
		next, err = picklist.Replace(cmd.Picklist, capacity)
	}
	if err != nil {
		return Decision{}, err
	}

	d.Picklist = next
	st.Categories[cmd.Category] = d
	return accept(st), nil
}

// activeTeam fails when id is unknown to the snapshot or no longer active.
func activeTeam(snap *model.Snapshot, id string) error {
	t, ok := snap.Team(id)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrUnknownTeam, picklist.ErrNotPresent, id)
	}
	if !t.Active() {
		return fmt.Errorf("%w: %s", ErrStaleEligibility, id)
	}
	return nil
}

// judgedTeam fails unless id is active and its judging session is
// completed.
func judgedTeam(snap *model.Snapshot, id string) error {
	if err := activeTeam(snap, id); err != nil {
		return err
	}
	if t, _ := snap.Team(id); t.SessionStatus != model.SessionCompleted {
		return fmt.Errorf("%w: %s session is %q", ErrStaleEligibility, id, t.SessionStatus)
	}
	return nil
}

// OverCapacity lists the categories whose picklist is longer than the
// current capacity, which happens when the snapshot shrinks after the
// picklist was built.
func (m *Machine) OverCapacity(st *model.State, snap *model.Snapshot) []model.Category {
	capacity := m.Capacity(snap)
	out := []model.Category{}
	for _, c := range model.Categories() {
		if len(st.Categories[c].Picklist) > capacity {
			out = append(out, c)
		}
	}
	return out
}
