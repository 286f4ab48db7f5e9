package model

// EventKind names an incremental upstream change to the snapshot.
type EventKind string

// Snapshot event kinds.
const (
	EventTeamUpserted            EventKind = "team-upserted"
	EventTeamArrived             EventKind = "team-arrived"
	EventTeamDisqualified        EventKind = "team-disqualified"
	EventSessionUpdated          EventKind = "session-updated"
	EventRubricFieldUpdated      EventKind = "rubric-field-updated"
	EventRubricNominationUpdated EventKind = "rubric-nomination-updated"
	EventScoresheetUpdated       EventKind = "scoresheet-updated"
	EventAwardsReplaced          EventKind = "awards-replaced"
	EventRoomsReplaced           EventKind = "rooms-replaced"
)

// Event is one partial upstream update. Only the fields relevant to Kind
// are read.
type Event struct {
	ID     string    `json:"id"`
	Kind   EventKind `json:"kind"`
	TeamID string    `json:"team_id,omitempty"`

	// team-upserted
	Team *Team `json:"team,omitempty"`

	// team-arrived, team-disqualified, rubric-nomination-updated
	Flag bool `json:"flag,omitempty"`

	// session-updated
	SessionStatus string `json:"session_status,omitempty"`
	RoomID        string `json:"room_id,omitempty"`

	// rubric-field-updated, rubric-nomination-updated
	Category Category `json:"category,omitempty"`
	Field    string   `json:"field,omitempty"`
	Value    *int     `json:"value,omitempty"`
	Award    string   `json:"award,omitempty"`

	// scoresheet-updated
	Scoresheet *Scoresheet `json:"scoresheet,omitempty"`

	// awards-replaced, rooms-replaced
	Awards []Award `json:"awards,omitempty"`
	Rooms  []Room  `json:"rooms,omitempty"`
}
