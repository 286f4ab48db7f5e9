package model

// CommandKind names a mutating deliberation command.
type CommandKind string

// Deliberation commands.
const (
	CommandStartDeliberation       CommandKind = "start-deliberation"
	CommandCompleteDeliberation    CommandKind = "complete-deliberation"
	CommandUpdatePicklist          CommandKind = "update-picklist"
	CommandAddToPicklist           CommandKind = "add-to-picklist"
	CommandRemoveFromPicklist      CommandKind = "remove-from-picklist"
	CommandReorderPicklist         CommandKind = "reorder-picklist"
	CommandStartFinal              CommandKind = "start-final"
	CommandAdvanceStage            CommandKind = "advance-stage"
	CommandUpdateAward             CommandKind = "update-award"
	CommandUpdateManualEligibility CommandKind = "update-manual-eligibility"
	CommandApproveFinal            CommandKind = "approve-final"
)

// Command is an explicit request to change the authoritative state.
type Command struct {
	ID       string      `json:"id"`
	Kind     CommandKind `json:"kind"`
	Category Category    `json:"category,omitempty"`
	TeamID   string      `json:"team_id,omitempty"`

	// update-picklist
	Picklist []string `json:"picklist,omitempty"`

	// reorder-picklist
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`

	// advance-stage: the stage the caller expects to leave.
	// update-manual-eligibility: the stage whose override list is replaced.
	Stage Stage `json:"stage,omitempty"`

	// update-award. For champions, Winners[i] fills place i+1 and an
	// empty id leaves that place open.
	Award   string   `json:"award,omitempty"`
	Winners []string `json:"winners,omitempty"`

	// update-manual-eligibility
	Teams []string `json:"teams,omitempty"`
}

// Job is one unit of work for the single state writer.
type Job struct {
	Command  *Command
	Event    *Event
	Snapshot *Snapshot
	Reply    chan JobResult
}

// ID returns the idempotency key of the job, if any.
func (j *Job) ID() string {
	switch {
	case j.Command != nil:
		return j.Command.ID
	case j.Event != nil:
		return j.Event.ID
	}
	return ""
}

// JobResult is what the writer hands back for one Job.
type JobResult struct {
	State     State
	Snapshot  Snapshot
	Duplicate bool
	Err       error
}
