package questionnaire

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/profile"
)

// RequiredMessage is reported for every unanswered required question.
const RequiredMessage = "Ce champ est requis"

// ErrNotTerminal is returned when the profile is requested before the
// summary section is reached.
var ErrNotTerminal = eris.New("questionnaire: profile is only available on the summary section")

// Controller drives one questionnaire session: a cursor over the sections,
// the recorded answers and the validation errors of the last advance.
// A Controller is not safe for concurrent use.
type Controller struct {
	q       model.Questionnaire
	builder *profile.Builder
	log     *zap.Logger

	index   int
	answers model.Answers
	errors  map[string]string
}

// NewController starts a session at the first section with the
// questionnaire's default answers recorded. The questionnaire is never
// modified.
func NewController(q model.Questionnaire, builder *profile.Builder) *Controller {
	c := &Controller{
		q:       q,
		builder: builder,
		log:     zap.L().With(zap.String("component", "questionnaire")),
	}
	c.Reset()
	return c
}

// Reset clears every answer, restores the defaults and rewinds to the first
// section.
func (c *Controller) Reset() {
	c.index = 0
	c.errors = map[string]string{}
	c.answers = make(model.Answers, len(c.q.Defaults))
	for id, v := range c.q.Defaults {
		c.answers[id] = model.Text(v)
	}
}

// Questionnaire returns the definition the controller runs over.
func (c *Controller) Questionnaire() model.Questionnaire { return c.q }

// RecordAnswer stores value for id, replacing any previous answer. It neither
// validates nor moves the cursor.
func (c *Controller) RecordAnswer(id string, value model.Value) {
	if _, ok := c.q.Question(id); !ok {
		c.log.Debug("answer recorded for unknown question", zap.String("question_id", id))
	}
	c.answers[id] = value
}

// Advance validates the current section and moves to the next visible one.
// It returns false when validation fails or the cursor already sits on the
// summary. The cursor never moves past the last section.
func (c *Controller) Advance() bool {
	last := len(c.q.Sections) - 1
	if c.index >= last {
		return false
	}

	if errs := Validate(c.q.Sections[c.index], c.answers); len(errs) > 0 {
		c.errors = errs
		return false
	}

	next := c.index + 1
	for next < last && !ShouldShow(c.q.Sections[next], c.answers) {
		c.log.Debug("skipping hidden section", zap.String("section_id", c.q.Sections[next].ID))
		next++
	}

	c.index = next
	c.errors = map[string]string{}
	return true
}

// Retreat moves to the previous visible section. On the first visible
// section it does nothing.
func (c *Controller) Retreat() {
	prev := c.index - 1
	for prev >= 0 && !ShouldShow(c.q.Sections[prev], c.answers) {
		prev--
	}
	if prev < 0 {
		return
	}
	c.index = prev
	c.errors = map[string]string{}
}

// CurrentSection returns the section under the cursor.
func (c *Controller) CurrentSection() model.Section {
	if len(c.q.Sections) == 0 {
		return model.Section{}
	}
	return c.q.Sections[c.index]
}

// Index returns the cursor position.
func (c *Controller) Index() int { return c.index }

// Errors returns a copy of the validation errors keyed by question id.
func (c *Controller) Errors() map[string]string {
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Answers returns a copy of the recorded answers.
func (c *Controller) Answers() model.Answers { return c.answers.Clone() }

// IsTerminal reports whether the cursor is on the summary section.
func (c *Controller) IsTerminal() bool {
	return len(c.q.Sections) > 0 && c.index == len(c.q.Sections)-1 && c.q.Sections[c.index].IsSummary()
}

// InvestorProfile computes the profile from the recorded answers. It is only
// available on the summary section.
func (c *Controller) InvestorProfile() (model.InvestorProfile, error) {
	if !c.IsTerminal() {
		return model.InvestorProfile{}, ErrNotTerminal
	}
	return c.builder.Build(c.answers), nil
}

// ShouldShow reports whether section is visible for answers. Sections
// without a condition are always visible.
func ShouldShow(section model.Section, answers model.Answers) bool {
	if section.Conditional == nil {
		return true
	}
	return section.Conditional.ShowWhen.Matches(answers.Get(section.Conditional.DependsOn))
}

// Validate returns an error message for every required question of section
// that has no usable answer. Combined amounts accept any recorded value but
// the empty string, so 0 and negatives count. Other types need a truthy
// value or the number 0.
func Validate(section model.Section, answers model.Answers) map[string]string {
	errs := map[string]string{}
	for _, q := range section.Questions {
		if !q.Required {
			continue
		}
		if !answered(q, answers.Get(q.ID)) {
			errs[q.ID] = RequiredMessage
		}
	}
	return errs
}

func answered(q model.Question, v model.Value) bool {
	if q.Type == model.TypeCombined {
		return !v.Absent() && !v.IsEmptyString()
	}
	return v.Truthy() || v.IsZeroNumber()
}
