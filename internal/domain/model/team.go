// Package model contains domain models passed between layers.
package model

// Category identifies a judging category.
type Category string

// Judging categories.
const (
	InnovationProject Category = "innovation-project"
	RobotDesign       Category = "robot-design"
	CoreValues        Category = "core-values"
)

// Categories lists the judging categories in display order.
func Categories() []Category {
	return []Category{InnovationProject, RobotDesign, CoreValues}
}

// Valid reports whether c is a known judging category.
func (c Category) Valid() bool {
	switch c {
	case InnovationProject, RobotDesign, CoreValues:
		return true
	}
	return false
}

// SessionCompleted is the judging session status that makes a team
// available for category deliberation.
const SessionCompleted = "completed"

// Team is the upstream team record the engine reads.
type Team struct {
	ID            string              `json:"id"`
	Number        int                 `json:"number"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Arrived       bool                `json:"arrived"`
	Disqualified  bool                `json:"disqualified"`
	RoomID        string              `json:"room_id,omitempty"`
	SessionStatus string              `json:"session_status,omitempty"`
	Rubrics       map[Category]Rubric `json:"rubrics,omitempty"`
	Scoresheets   []Scoresheet        `json:"scoresheets,omitempty"`
}

// Active reports whether the team can be considered for anything at all.
// Non-arrival and disqualification are absolute exclusions.
func (t *Team) Active() bool {
	return t.Arrived && !t.Disqualified
}

// Rubric holds the judged field values of one category.
// A nil field value means the field has not been scored yet.
type Rubric struct {
	Fields   map[string]*int `json:"fields,omitempty"`
	Awards   map[string]bool `json:"awards,omitempty"`
	Feedback string          `json:"feedback,omitempty"`
}

// Scoresheet is one ranking-round robot game scoresheet.
type Scoresheet struct {
	Round int     `json:"round"`
	Score float64 `json:"score"`
	GP    *int    `json:"gp,omitempty"`
}

// Room is a judging room.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Award is a configured award of the event.
type Award struct {
	Name             string   `json:"name"`
	Count            int      `json:"count"`
	Optional         bool     `json:"optional"`
	AllowNominations bool     `json:"allow_nominations"`
	Winners          []string `json:"winners,omitempty"`
}

// Snapshot is the read-only upstream view the engine computes over.
type Snapshot struct {
	Version int64   `json:"version"`
	Teams   []Team  `json:"teams"`
	Rooms   []Room  `json:"rooms"`
	Awards  []Award `json:"awards"`
}

// Team returns the team with the given id.
func (s *Snapshot) Team(id string) (Team, bool) {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return s.Teams[i], true
		}
	}
	return Team{}, false
}

// Award returns the award with the given name.
func (s *Snapshot) Award(name string) (Award, bool) {
	for _, a := range s.Awards {
		if a.Name == name {
			return a, true
		}
	}
	return Award{}, false
}

// AwardCount returns the configured winner count for name, or 0.
func (s *Snapshot) AwardCount(name string) int {
	a, _ := s.Award(name)
	return a.Count
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() Snapshot {
	out := Snapshot{
		Version: s.Version,
		Teams:   make([]Team, len(s.Teams)),
		Rooms:   append([]Room(nil), s.Rooms...),
		Awards:  make([]Award, len(s.Awards)),
	}
	for i := range s.Teams {
		out.Teams[i] = s.Teams[i].Clone()
	}
	for i, a := range s.Awards {
		a.Winners = append([]string(nil), a.Winners...)
		out.Awards[i] = a
	}
	return out
}

// Clone returns a deep copy of the team.
func (t *Team) Clone() Team {
	out := *t
	out.Scoresheets = make([]Scoresheet, len(t.Scoresheets))
	for i, s := range t.Scoresheets {
		if s.GP != nil {
			gp := *s.GP
			s.GP = &gp
		}
		out.Scoresheets[i] = s
	}
	if t.Rubrics != nil {
		out.Rubrics = make(map[Category]Rubric, len(t.Rubrics))
		for c, r := range t.Rubrics {
			out.Rubrics[c] = r.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the rubric.
func (r Rubric) Clone() Rubric {
	out := Rubric{Feedback: r.Feedback}
	if r.Fields != nil {
		out.Fields = make(map[string]*int, len(r.Fields))
		for id, v := range r.Fields {
			if v == nil {
				out.Fields[id] = nil
				continue
			}
			val := *v
			out.Fields[id] = &val
		}
	}
	if r.Awards != nil {
		out.Awards = make(map[string]bool, len(r.Awards))
		for k, v := range r.Awards {
			out.Awards[k] = v
		}
	}
	return out
}
