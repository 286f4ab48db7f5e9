// Package scoring derives comparable numeric scores from rubric and
// scoresheet data and normalizes them across judging rooms.
package scoring

import (
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/season"
)

// Dimension names one score axis.
type Dimension string

// Score dimensions.
const (
	DimInnovationProject Dimension = "innovation-project"
	DimRobotDesign       Dimension = "robot-design"
	DimCoreValues        Dimension = "core-values"
	DimCoreValuesNoGP    Dimension = "core-values-no-gp"
	DimTotal             Dimension = "total"
)

// Dimensions lists every score dimension.
func Dimensions() []Dimension {
	return []Dimension{DimInnovationProject, DimRobotDesign, DimCoreValues, DimCoreValuesNoGP, DimTotal}
}

// ForCategory returns the dimension a category is ranked on.
func ForCategory(c model.Category) Dimension {
	switch c {
	case model.InnovationProject:
		return DimInnovationProject
	case model.RobotDesign:
		return DimRobotDesign
	default:
		return DimCoreValues
	}
}

// Scores is the derived score record of one team.
type Scores struct {
	InnovationProject float64 `json:"innovation-project"`
	RobotDesign       float64 `json:"robot-design"`
	CoreValues        float64 `json:"core-values"`
	CoreValuesNoGP    float64 `json:"core-values-no-gp"`
	Total             float64 `json:"total"`
}

// Get returns the value of dimension d.
func (s Scores) Get(d Dimension) float64 {
	switch d {
	case DimInnovationProject:
		return s.InnovationProject
	case DimRobotDesign:
		return s.RobotDesign
	case DimCoreValues:
		return s.CoreValues
	case DimCoreValuesNoGP:
		return s.CoreValuesNoGP
	case DimTotal:
		return s.Total
	}
	return 0
}

func (s *Scores) set(d Dimension, v float64) {
	switch d {
	case DimInnovationProject:
		s.InnovationProject = v
	case DimRobotDesign:
		s.RobotDesign = v
	case DimCoreValues:
		s.CoreValues = v
	case DimCoreValuesNoGP:
		s.CoreValuesNoGP = v
	case DimTotal:
		s.Total = v
	}
}

// Computer computes team scores for one season.
type Computer struct {
	season *season.Season
}

// NewComputer creates a Computer. Without WithSeason the embedded season
// is used.
func NewComputer(opts ...Option) *Computer {
	c := &Computer{}
	for _, opt := range opts {
		opt(c)
	}
	if c.season == nil {
		c.season = season.Default()
	}
	return c
}

// Compute derives the score record of one team. Absent rubrics and
// unscored fields contribute 0; a scoresheet without GP contributes the
// season GP default to core values only.
func (c *Computer) Compute(team *model.Team) Scores {
	var s Scores
	s.InnovationProject = c.sumFields(team, model.InnovationProject, false)
	s.RobotDesign = c.sumFields(team, model.RobotDesign, false)

	cvNoGP := c.sumFields(team, model.InnovationProject, true) +
		c.sumFields(team, model.RobotDesign, true) +
		c.sumFields(team, model.CoreValues, false)

	var gp float64
	for _, sheet := range team.Scoresheets {
		if sheet.GP != nil {
			gp += float64(*sheet.GP)
			continue
		}
		gp += float64(c.season.GPDefault)
	}

	s.CoreValuesNoGP = cvNoGP
	s.CoreValues = cvNoGP + gp
	s.Total = s.InnovationProject + s.RobotDesign + cvNoGP
	return s
}

// ComputeAll derives scores for every team keyed by team id.
func (c *Computer) ComputeAll(teams []model.Team) map[string]Scores {
	out := make(map[string]Scores, len(teams))
	for i := range teams {
		out[teams[i].ID] = c.Compute(&teams[i])
	}
	return out
}

func (c *Computer) sumFields(team *model.Team, cat model.Category, coreValuesOnly bool) float64 {
	r, ok := team.Rubrics[cat]
	if !ok {
		return 0
	}
	var sum float64
	for id, v := range r.Fields {
		if v == nil {
			continue
		}
		if coreValuesOnly && !c.season.IsCoreValuesField(cat, id) {
			continue
		}
		sum += float64(*v)
	}
	return sum
}
