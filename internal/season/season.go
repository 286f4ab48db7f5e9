// Package season holds the injected season configuration: the GP default
// and which rubric fields count toward core values.
package season

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/deliberation/internal/domain/model"
)

//go:embed default.yaml
var defaultSeason []byte

var validate = validator.New()

// Field is one rubric field definition.
type Field struct {
	ID         string `yaml:"id" validate:"required"`
	CoreValues bool   `yaml:"core_values"`
}

// Rubric is the field schema of one category rubric.
type Rubric struct {
	Fields []Field `yaml:"fields" validate:"required,dive"`
}

// Season is the per-season judging configuration.
type Season struct {
	Name      string                    `yaml:"name"`
	GPDefault int                       `yaml:"gp_default" validate:"gte=0"`
	GPValues  []int                     `yaml:"gp_values" validate:"omitempty,dive,gte=0"`
	Rubrics   map[model.Category]Rubric `yaml:"rubrics" validate:"required,dive,keys,oneof=innovation-project robot-design core-values,endkeys"`
}

// Default returns the embedded season.
func Default() *Season {
	s, err := Parse(defaultSeason)
	if err != nil {
		panic(fmt.Sprintf("embedded season is invalid: %v", err))
	}
	return s
}

// Load reads a season file. An empty path yields the embedded default.
func Load(path string) (*Season, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSeason, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML season document. Unknown keys are
// rejected to catch typos.
func Parse(data []byte) (*Season, error) {
	var s Season
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSeason, err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeason, err)
	}
	if len(s.GPValues) > 0 && !containsInt(s.GPValues, s.GPDefault) {
		return nil, fmt.Errorf("%w: gp_default %d not in gp_values", ErrInvalidSeason, s.GPDefault)
	}
	return &s, nil
}

// IsCoreValuesField reports whether field id of category c counts toward
// core values. Every field of the core-values rubric does.
func (s *Season) IsCoreValuesField(c model.Category, id string) bool {
	if c == model.CoreValues {
		return true
	}
	for _, f := range s.Rubrics[c].Fields {
		if f.ID == id {
			return f.CoreValues
		}
	}
	return false
}

// CoreValuesFields lists the core-values fields of category c.
func (s *Season) CoreValuesFields(c model.Category) []string {
	var out []string
	for _, f := range s.Rubrics[c].Fields {
		if c == model.CoreValues || f.CoreValues {
			out = append(out, f.ID)
		}
	}
	return out
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
