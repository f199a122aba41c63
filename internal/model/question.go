package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// QuestionType tags the input widget a question is rendered with.
type QuestionType string

const (
	TypeRadio    QuestionType = "radio"    // single choice
	TypeCheckbox QuestionType = "checkbox" // multiple choice
	TypeNumber   QuestionType = "number"
	TypeCurrency QuestionType = "currency"
	TypeSlider   QuestionType = "slider"   // bounded number with slider
	TypeCombined QuestionType = "combined" // slider + exact amount field
)

// QuestionTypes lists every supported type tag.
var QuestionTypes = []QuestionType{
	TypeRadio,
	TypeCheckbox,
	TypeNumber,
	TypeCurrency,
	TypeSlider,
	TypeCombined,
}

// Valid reports whether t is one of the supported type tags.
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Choice reports whether the type selects from an option list.
func (t QuestionType) Choice() bool {
	return t == TypeRadio || t == TypeCheckbox
}

// Numeric reports whether the type records a number.
func (t QuestionType) Numeric() bool {
	switch t {
	case TypeNumber, TypeCurrency, TypeSlider, TypeCombined:
		return true
	}
	return false
}

// Option is one selectable answer of a choice question.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Mark is a labelled tick on a slider.
type Mark struct {
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
}

// Bounds holds the numeric range of a numeric question or component.
// Nil Min/Max means unbounded on that side.
type Bounds struct {
	Min   *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step  float64  `json:"step,omitempty" yaml:"step,omitempty"`
	Marks []Mark   `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// Component is one input of a combined question (the slider or the exact field).
type Component struct {
	Type   string `json:"type" yaml:"type"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Bounds `yaml:",inline"`
}

// Question is a static question definition.
type Question struct {
	ID         string       `json:"id" yaml:"id"`
	Text       string       `json:"text" yaml:"text"`
	Label      string       `json:"label,omitempty" yaml:"label,omitempty"`
	Type       QuestionType `json:"type" yaml:"type"`
	Options    []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Unit       string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	Components []Component  `json:"components,omitempty" yaml:"components,omitempty"`
	Required   bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Footnote   string       `json:"footnote,omitempty" yaml:"footnote,omitempty"`
	Help       string       `json:"help,omitempty" yaml:"help,omitempty"`

	Bounds `yaml:",inline"`
}

// NumericBounds returns the effective range of a numeric question. For
// combined questions the exact-amount component wins, then the slider.
func (q Question) NumericBounds() Bounds {
	if q.Type != TypeCombined || len(q.Components) == 0 {
		return q.Bounds
	}
	for _, c := range q.Components {
		if c.Type == string(TypeNumber) {
			return c.Bounds
		}
	}
	return q.Components[0].Bounds
}

// HasOption reports whether value is one of the question's option values.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// SectionTypeSummary marks the terminal, computed section.
const SectionTypeSummary = "summary"

// Condition gates a section on an earlier answer.
type Condition struct {
	DependsOn string   `json:"dependsOn" yaml:"dependsOn"`
	ShowWhen  ShowWhen `json:"showWhen" yaml:"showWhen"`
}

// ShowWhen is the accepted value (or set of values) of a Condition. It decodes
// from either a scalar or a list.
type ShowWhen []string

// UnmarshalJSON accepts "x" or ["x", "y"].
func (s *ShowWhen) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = ShowWhen{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return eris.Wrap(err, "model: showWhen must be a string or a list of strings")
	}
	*s = many
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence node.
func (s *ShowWhen) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = ShowWhen{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return eris.Wrap(err, "model: decode showWhen list")
		}
		*s = many
		return nil
	default:
		return eris.Errorf("model: showWhen must be a scalar or a list (line %d)", node.Line)
	}
}

// Matches reports whether the recorded answer satisfies the condition. An
// absent answer or a multi-choice answer never matches.
func (s ShowWhen) Matches(v Value) bool {
	key, ok := v.Key()
	if !ok {
		return false
	}
	for _, want := range s {
		if want == key {
			return true
		}
	}
	return false
}

// Section is a static page of the questionnaire.
type Section struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Type        string     `json:"type,omitempty" yaml:"type,omitempty"`
	Conditional *Condition `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Questions   []Question `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// IsSummary reports whether the section is the computed summary.
func (s Section) IsSummary() bool {
	return s.Type == SectionTypeSummary
}

// Questionnaire is the ordered section list plus the answers a fresh session
// starts with.
type Questionnaire struct {
	Sections []Section         `json:"sections" yaml:"sections"`
	Defaults map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Question looks up a question by id across all sections.
func (q Questionnaire) Question(id string) (Question, bool) {
	for _, s := range q.Sections {
		for _, qq := range s.Questions {
			if qq.ID == id {
				return qq, true
			}
		}
	}
	return Question{}, false
}
