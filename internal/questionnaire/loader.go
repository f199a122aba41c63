// Package questionnaire loads questionnaire definitions and runs the
// section-by-section flow of a single session.
package questionnaire

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fundora/kyb-cli/internal/model"
)

//go:embed kyb.yaml
var defaultDefinition []byte

const (
	summaryID    = "profileSummary"
	summaryTitle = "Synthèse du profil de l’entreprise et recommandations"
)

// ConfigIssue describes a definition problem that caused part of the
// questionnaire to be skipped.
type ConfigIssue struct {
	Section  string `json:"section,omitempty"`
	Question string `json:"question,omitempty"`
	Reason   string `json:"reason"`
}

func (i ConfigIssue) String() string {
	switch {
	case i.Question != "":
		return fmt.Sprintf("section %q question %q: %s", i.Section, i.Question, i.Reason)
	case i.Section != "":
		return fmt.Sprintf("section %q: %s", i.Section, i.Reason)
	default:
		return i.Reason
	}
}

// Default returns the built-in KYB questionnaire.
func Default() (model.Questionnaire, error) {
	q, _, err := Parse(defaultDefinition)
	if err != nil {
		return model.Questionnaire{}, eris.Wrap(err, "questionnaire: built-in definition")
	}
	return q, nil
}

// Load reads a YAML or JSON definition from path. An empty path loads the
// built-in questionnaire.
func Load(path string) (model.Questionnaire, []ConfigIssue, error) {
	if path == "" {
		q, err := Default()
		return q, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Questionnaire{}, nil, eris.Wrapf(err, "questionnaire: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a definition and sanitizes it. JSON input is accepted since
// it is valid YAML.
func Parse(data []byte) (model.Questionnaire, []ConfigIssue, error) {
	var q model.Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return model.Questionnaire{}, nil, eris.Wrap(err, "questionnaire: parse definition")
	}
	clean, issues := Sanitize(q)
	return clean, issues, nil
}

// Sanitize drops every malformed section and question and returns what is
// left along with the reasons. The result always ends with exactly one
// summary section and every condition references a question declared in an
// earlier section. Each issue is logged at warn level.
func Sanitize(q model.Questionnaire) (model.Questionnaire, []ConfigIssue) {
	s := &sanitizer{
		sectionIDs:  map[string]bool{},
		questionIDs: map[string]bool{},
	}

	var sections []model.Section
	for _, sec := range q.Sections {
		if kept, ok := s.section(sec); ok {
			sections = append(sections, kept)
		}
	}
	sections = s.summary(sections)

	out := model.Questionnaire{Sections: sections}
	ids := make([]string, 0, len(q.Defaults))
	for id := range q.Defaults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !s.questionIDs[id] {
			s.add(ConfigIssue{Question: id, Reason: "default answer for unknown question dropped"})
			continue
		}
		if out.Defaults == nil {
			out.Defaults = map[string]string{}
		}
		out.Defaults[id] = q.Defaults[id]
	}

	log := zap.L().With(zap.String("component", "questionnaire"))
	for _, issue := range s.issues {
		log.Warn("questionnaire: configuration issue",
			zap.String("section", issue.Section),
			zap.String("question", issue.Question),
			zap.String("reason", issue.Reason),
		)
	}
	return out, s.issues
}

type sanitizer struct {
	sectionIDs  map[string]bool
	questionIDs map[string]bool // declared in already accepted sections
	issues      []ConfigIssue
}

func (s *sanitizer) add(issue ConfigIssue) {
	s.issues = append(s.issues, issue)
}

func (s *sanitizer) section(sec model.Section) (model.Section, bool) {
	switch {
	case sec.ID == "":
		s.add(ConfigIssue{Reason: fmt.Sprintf("section %q has no id", sec.Title)})
		return sec, false
	case s.sectionIDs[sec.ID]:
		s.add(ConfigIssue{Section: sec.ID, Reason: "duplicate section id"})
		return sec, false
	case sec.Type != "" && !sec.IsSummary():
		s.add(ConfigIssue{Section: sec.ID, Reason: fmt.Sprintf("unknown section type %q", sec.Type)})
		return sec, false
	}

	if sec.IsSummary() {
		s.sectionIDs[sec.ID] = true
		if len(sec.Questions) > 0 || sec.Conditional != nil {
			s.add(ConfigIssue{Section: sec.ID, Reason: "summary section cannot carry questions or a condition"})
			sec.Questions = nil
			sec.Conditional = nil
		}
		return sec, true
	}

	if c := sec.Conditional; c != nil {
		switch {
		case c.DependsOn == "":
			s.add(ConfigIssue{Section: sec.ID, Reason: "condition has no dependsOn"})
			return sec, false
		case !s.questionIDs[c.DependsOn]:
			s.add(ConfigIssue{Section: sec.ID, Reason: fmt.Sprintf("condition depends on %q which is not declared in an earlier section", c.DependsOn)})
			return sec, false
		case len(c.ShowWhen) == 0:
			s.add(ConfigIssue{Section: sec.ID, Reason: "condition has no showWhen value"})
			return sec, false
		}
	}

	questions := make([]model.Question, 0, len(sec.Questions))
	declared := map[string]bool{}
	for _, q := range sec.Questions {
		if reason := s.invalidQuestion(q, declared); reason != "" {
			s.add(ConfigIssue{Section: sec.ID, Question: q.ID, Reason: reason})
			continue
		}
		declared[q.ID] = true
		questions = append(questions, q)
	}
	sec.Questions = questions

	s.sectionIDs[sec.ID] = true
	for id := range declared {
		s.questionIDs[id] = true
	}
	return sec, true
}

func (s *sanitizer) invalidQuestion(q model.Question, declared map[string]bool) string {
	switch {
	case q.ID == "":
		return "question has no id"
	case s.questionIDs[q.ID] || declared[q.ID]:
		return "duplicate question id"
	case !q.Type.Valid():
		return fmt.Sprintf("unsupported question type %q", q.Type)
	case q.Type.Choice() && len(q.Options) == 0:
		return "choice question has no options"
	}
	if !ordered(q.Bounds) {
		return "min is greater than max"
	}
	for _, c := range q.Components {
		if !ordered(c.Bounds) {
			return "component min is greater than max"
		}
	}
	return ""
}

// summary keeps the last section as the only summary, appending one when the
// definition has none.
func (s *sanitizer) summary(sections []model.Section) []model.Section {
	out := sections[:0:0]
	for i, sec := range sections {
		if sec.IsSummary() && i != len(sections)-1 {
			s.add(ConfigIssue{Section: sec.ID, Reason: "summary section must be last"})
			continue
		}
		out = append(out, sec)
	}

	if len(out) == 0 || !out[len(out)-1].IsSummary() {
		id := summaryID
		if s.sectionIDs[id] {
			id += "_summary"
		}
		s.add(ConfigIssue{Section: id, Reason: "no summary section, one was appended"})
		out = append(out, model.Section{ID: id, Title: summaryTitle, Type: model.SectionTypeSummary})
	}
	return out
}

func ordered(b model.Bounds) bool {
	return b.Min == nil || b.Max == nil || *b.Min <= *b.Max
}
