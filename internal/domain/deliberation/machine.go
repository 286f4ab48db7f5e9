// Package deliberation governs the category and final deliberation
// lifecycles. Decide is pure: it works on a copy of the state and either
// returns the full new state or an error with the input untouched.
package deliberation

import (
	"time"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/picklist"
	"github.com/okian/deliberation/internal/domain/scoring"
)

// Decision is the outcome of one accepted command. Changed is false for
// idempotent repeats that leave the state as it was.
type Decision struct {
	State   model.State
	Changed bool
}

func accept(st model.State) Decision { return Decision{State: st, Changed: true} }

func noop(st model.State) Decision { return Decision{State: st} }

// Machine decides deliberation commands.
type Machine struct {
	picklistMax        int
	picklistMultiplier float64
	exemptAwards       []string
	autoAssigned       string
	advancementPercent float64
	scorer             *scoring.Computer
}

// NewMachine creates a Machine with the default policy.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		picklistMax:        picklist.DefaultMax,
		picklistMultiplier: picklist.DefaultMultiplier,
		exemptAwards:       []string{model.AwardRobotPerformance, model.AwardAdvancement},
		autoAssigned:       model.AwardExcellenceInEng,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scorer == nil {
		m.scorer = scoring.NewComputer()
	}
	return m
}

// automatic reports whether award name is filled by the engine rather
// than decided by hand.
func (m *Machine) automatic(name string) bool {
	return name == m.autoAssigned || name == model.AwardRobotPerformance || name == model.AwardAdvancement
}

// Capacity is the picklist capacity for the snapshot's team count.
func (m *Machine) Capacity(snap *model.Snapshot) int {
	return picklist.Limit(len(snap.Teams), m.picklistMax, m.picklistMultiplier)
}

// Decide validates cmd against the latest state and snapshot and returns
// the resulting state.
func (m *Machine) Decide(state *model.State, snap *model.Snapshot, cmd *model.Command, now time.Time) (Decision, error) {
	st := state.Clone()
	var (
		d   Decision
		err error
	)
	switch cmd.Kind {
	case model.CommandStartDeliberation:
		d, err = m.startCategory(st, cmd, now)
	case model.CommandCompleteDeliberation:
		d, err = m.completeCategory(st, cmd)
	case model.CommandAddToPicklist, model.CommandRemoveFromPicklist,
		model.CommandReorderPicklist, model.CommandUpdatePicklist:
		d, err = m.editPicklist(st, snap, cmd)
	case model.CommandStartFinal:
		d, err = m.startFinal(st, now)
	case model.CommandAdvanceStage:
		d, err = m.advance(st, snap, cmd)
	case model.CommandUpdateAward:
		d, err = m.updateAward(st, snap, cmd)
	case model.CommandUpdateManualEligibility:
		d, err = m.updateManualEligibility(st, snap, cmd)
	case model.CommandApproveFinal:
		d, err = m.approve(st, now)
	default:
		err = ErrUnknownCommand
	}
	if err != nil {
		return Decision{}, &CommandError{Op: string(cmd.Kind), Err: err}
	}
	return d, nil
}
