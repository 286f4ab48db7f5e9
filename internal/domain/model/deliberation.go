package model

import "time"

// Status is the lifecycle status of a deliberation or a final stage.
type Status string

// Deliberation statuses. They only ever move forward.
const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Stage is a phase of the final deliberation.
type Stage string

// Final deliberation stages in order.
const (
	StageChampions      Stage = "champions"
	StageCoreAwards     Stage = "core-awards"
	StageOptionalAwards Stage = "optional-awards"
	StageReview         Stage = "review"
)

// Stages lists the final deliberation stages in order.
func Stages() []Stage {
	return []Stage{StageChampions, StageCoreAwards, StageOptionalAwards, StageReview}
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageChampions, StageCoreAwards, StageOptionalAwards, StageReview:
		return true
	}
	return false
}

// Award names with engine-level meaning.
const (
	AwardChampions        = "champions"
	AwardRobotPerformance = "robot-performance"
	AwardAdvancement      = "advancement"
	AwardExcellenceInEng  = "excellence-in-engineering"
)

// CategoryDeliberation is the per-category deliberation record.
type CategoryDeliberation struct {
	Category  Category   `json:"category"`
	Status    Status     `json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Picklist  []string   `json:"picklist"`
}

// FinalDeliberation is the per-event cross-category deliberation record.
type FinalDeliberation struct {
	Stage       Stage               `json:"stage"`
	Status      Status              `json:"status"`
	StageStatus map[Stage]Status    `json:"stage_status"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Champions   map[int]string      `json:"champions"`
	Awards      map[string][]string `json:"awards"`

	CoreAwardsManualEligibility     []string `json:"core_awards_manual_eligibility"`
	OptionalAwardsManualEligibility []string `json:"optional_awards_manual_eligibility"`
}

// State is the authoritative deliberation state of one event.
type State struct {
	EventID    string                            `json:"event_id"`
	Version    int64                             `json:"version"`
	Categories map[Category]CategoryDeliberation `json:"categories"`
	Final      FinalDeliberation                 `json:"final"`
}

// NewState returns the initial state of an event: every deliberation
// created and not started.
func NewState(eventID string) State {
	st := State{
		EventID:    eventID,
		Categories: make(map[Category]CategoryDeliberation, len(Categories())),
		Final: FinalDeliberation{
			Stage:       StageChampions,
			Status:      StatusNotStarted,
			StageStatus: make(map[Stage]Status, len(Stages())),
			Champions:   map[int]string{},
			Awards:      map[string][]string{},
		},
	}
	for _, c := range Categories() {
		st.Categories[c] = CategoryDeliberation{Category: c, Status: StatusNotStarted, Picklist: []string{}}
	}
	for _, s := range Stages() {
		st.Final.StageStatus[s] = StatusNotStarted
	}
	return st
}

// Picklists returns every category picklist keyed by category.
func (s *State) Picklists() map[Category][]string {
	out := make(map[Category][]string, len(s.Categories))
	for c, d := range s.Categories {
		out[c] = d.Picklist
	}
	return out
}

// Clone returns a deep copy so a decider can mutate freely.
func (s *State) Clone() State {
	out := State{
		EventID:    s.EventID,
		Version:    s.Version,
		Categories: make(map[Category]CategoryDeliberation, len(s.Categories)),
	}
	for c, d := range s.Categories {
		d.Picklist = append([]string{}, d.Picklist...)
		d.StartedAt = cloneTime(d.StartedAt)
		out.Categories[c] = d
	}
	f := s.Final
	f.StartedAt = cloneTime(f.StartedAt)
	f.CompletedAt = cloneTime(f.CompletedAt)
	f.StageStatus = make(map[Stage]Status, len(s.Final.StageStatus))
	for k, v := range s.Final.StageStatus {
		f.StageStatus[k] = v
	}
	f.Champions = make(map[int]string, len(s.Final.Champions))
	for k, v := range s.Final.Champions {
		f.Champions[k] = v
	}
	f.Awards = make(map[string][]string, len(s.Final.Awards))
	for k, v := range s.Final.Awards {
		f.Awards[k] = append([]string{}, v...)
	}
	f.CoreAwardsManualEligibility = append([]string{}, s.Final.CoreAwardsManualEligibility...)
	f.OptionalAwardsManualEligibility = append([]string{}, s.Final.OptionalAwardsManualEligibility...)
	out.Final = f
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
