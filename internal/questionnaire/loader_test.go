package questionnaire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundora/kyb-cli/internal/model"
)

func sectionIDs(q model.Questionnaire) []string {
	ids := make([]string, 0, len(q.Sections))
	for _, s := range q.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func reasons(issues []ConfigIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Reason)
	}
	return out
}

func TestDefault(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"companyInformation",
		"investmentObjectives",
		"esgBlock",
		"financialSituation",
		"experienceAndKnowledge",
		"commitments",
		"profileSummary",
	}, sectionIDs(q))

	last := q.Sections[len(q.Sections)-1]
	assert.True(t, last.IsSummary())

	esg := q.Sections[2]
	require.NotNil(t, esg.Conditional)
	assert.Equal(t, "mainObjective_company", esg.Conditional.DependsOn)
	assert.Equal(t, model.ShowWhen{"impact"}, esg.Conditional.ShowWhen)
	assert.Len(t, esg.Questions, 9)

	turnover, ok := q.Question("annualTurnover")
	require.True(t, ok)
	assert.Equal(t, model.TypeCombined, turnover.Type)
	assert.True(t, turnover.Required)
	require.Len(t, turnover.Components, 2)
	assert.Len(t, turnover.Components[0].Marks, 5)
	b := turnover.NumericBounds()
	require.NotNil(t, b.Min)
	require.NotNil(t, b.Max)
	assert.Equal(t, 0.0, *b.Min)
	assert.Equal(t, 2_000_000.0, *b.Max)
	assert.Equal(t, 10_000.0, b.Step)

	netIncome, ok := q.Question("netIncome")
	require.True(t, ok)
	assert.Equal(t, -2_000_000.0, *netIncome.NumericBounds().Min)

	pep, ok := q.Question("pep_company")
	require.True(t, ok)
	assert.True(t, pep.HasOption("OUI"))
	assert.NotEmpty(t, pep.Footnote)

	pct, ok := q.Question("companyInvestmentPercentage")
	require.True(t, ok)
	assert.True(t, pct.HasOption("5%"))

	assert.Equal(t, map[string]string{
		"mainObjective_company":     "patrimoine",
		"investmentHorizon_company": "moyen",
		"riskLevel_company":         "modere",
	}, q.Defaults)
}

func TestDefaultHasNoIssues(t *testing.T) {
	_, issues, err := Parse(defaultDefinition)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestLoad(t *testing.T) {
	t.Run("empty path is the built-in questionnaire", func(t *testing.T) {
		q, issues, err := Load("")
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.Len(t, q.Sections, 7)
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "q.json")
		data := `{
  "sections": [
    {"id": "s1", "title": "Start", "questions": [
      {"id": "mainObjective_company", "type": "radio", "options": [{"value": "impact", "label": "Impact"}]}
    ]},
    {"id": "s2", "conditional": {"dependsOn": "mainObjective_company", "showWhen": "impact"}, "questions": [
      {"id": "amount", "type": "currency", "min": 0, "required": true}
    ]},
    {"id": "end", "type": "summary"}
  ]
}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		q, issues, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.Equal(t, []string{"s1", "s2", "end"}, sectionIDs(q))
		assert.Equal(t, model.ShowWhen{"impact"}, q.Sections[1].Conditional.ShowWhen)
		require.NotNil(t, q.Sections[1].Questions[0].Min)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "questionnaire: read")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sections: [unclosed"), 0644))

		_, _, err := Load(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "questionnaire: parse definition")
	})
}

func TestSanitize_Sections(t *testing.T) {
	q := model.Questionnaire{Sections: []model.Section{
		{ID: "a", Questions: []model.Question{{ID: "x", Type: model.TypeNumber}}},
		{Title: "no id"},
		{ID: "a"},
		{ID: "b", Type: "wizard"},
		{ID: "early", Type: model.SectionTypeSummary},
		{ID: "c"},
		{ID: "end", Type: model.SectionTypeSummary},
	}}

	clean, issues := Sanitize(q)
	assert.Equal(t, []string{"a", "c", "end"}, sectionIDs(clean))
	assert.Equal(t, []string{
		`section "no id" has no id`,
		"duplicate section id",
		`unknown section type "wizard"`,
		"summary section must be last",
	}, reasons(issues))

	// The input is left untouched.
	assert.Len(t, q.Sections, 7)
}

func TestSanitize_AppendsSummary(t *testing.T) {
	clean, issues := Sanitize(model.Questionnaire{Sections: []model.Section{{ID: "only"}}})

	require.Len(t, clean.Sections, 2)
	assert.True(t, clean.Sections[1].IsSummary())
	assert.Equal(t, "profileSummary", clean.Sections[1].ID)
	assert.Equal(t, []string{"no summary section, one was appended"}, reasons(issues))

	empty, _ := Sanitize(model.Questionnaire{})
	require.Len(t, empty.Sections, 1)
	assert.True(t, empty.Sections[0].IsSummary())
}

func TestSanitize_SummaryIsStripped(t *testing.T) {
	clean, issues := Sanitize(model.Questionnaire{Sections: []model.Section{
		{ID: "a", Questions: []model.Question{{ID: "x", Type: model.TypeNumber}}},
		{
			ID:          "end",
			Type:        model.SectionTypeSummary,
			Conditional: &model.Condition{DependsOn: "x", ShowWhen: model.ShowWhen{"1"}},
			Questions:   []model.Question{{ID: "y", Type: model.TypeNumber}},
		},
	}})

	last := clean.Sections[1]
	assert.Nil(t, last.Conditional)
	assert.Empty(t, last.Questions)
	assert.Len(t, issues, 1)
}

func TestSanitize_Conditions(t *testing.T) {
	radio := model.Question{ID: "gate", Type: model.TypeRadio, Options: []model.Option{{Value: "OUI"}}}

	tests := []struct {
		name   string
		cond   *model.Condition
		kept   bool
		reason string
	}{
		{"earlier question", &model.Condition{DependsOn: "gate", ShowWhen: model.ShowWhen{"OUI"}}, true, ""},
		{"forward reference", &model.Condition{DependsOn: "later", ShowWhen: model.ShowWhen{"OUI"}}, false, `condition depends on "later" which is not declared in an earlier section`},
		{"self reference", &model.Condition{DependsOn: "own", ShowWhen: model.ShowWhen{"OUI"}}, false, `condition depends on "own" which is not declared in an earlier section`},
		{"no dependsOn", &model.Condition{ShowWhen: model.ShowWhen{"OUI"}}, false, "condition has no dependsOn"},
		{"no showWhen", &model.Condition{DependsOn: "gate"}, false, "condition has no showWhen value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := model.Questionnaire{Sections: []model.Section{
				{ID: "start", Questions: []model.Question{radio}},
				{ID: "gated", Conditional: tt.cond, Questions: []model.Question{{ID: "own", Type: model.TypeNumber}}},
				{ID: "next", Questions: []model.Question{{ID: "later", Type: model.TypeNumber}}},
				{ID: "end", Type: model.SectionTypeSummary},
			}}

			clean, issues := Sanitize(q)
			if tt.kept {
				assert.Equal(t, []string{"start", "gated", "next", "end"}, sectionIDs(clean))
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, []string{"start", "next", "end"}, sectionIDs(clean))
			assert.Equal(t, []string{tt.reason}, reasons(issues))
			assert.Equal(t, "gated", issues[0].Section)
		})
	}
}

func TestSanitize_ConditionOnDroppedQuestion(t *testing.T) {
	clean, issues := Sanitize(model.Questionnaire{Sections: []model.Section{
		{ID: "start", Questions: []model.Question{{ID: "gate", Type: "dropdown"}}},
		{ID: "gated", Conditional: &model.Condition{DependsOn: "gate", ShowWhen: model.ShowWhen{"x"}}},
		{ID: "end", Type: model.SectionTypeSummary},
	}})

	assert.Equal(t, []string{"start", "end"}, sectionIDs(clean))
	assert.Len(t, issues, 2)
}

func TestSanitize_Questions(t *testing.T) {
	tests := []struct {
		name     string
		question model.Question
		reason   string
	}{
		{"no id", model.Question{Type: model.TypeNumber}, "question has no id"},
		{"unknown type", model.Question{ID: "q", Type: "dropdown"}, `unsupported question type "dropdown"`},
		{"empty type", model.Question{ID: "q"}, `unsupported question type ""`},
		{"radio without options", model.Question{ID: "q", Type: model.TypeRadio}, "choice question has no options"},
		{"checkbox without options", model.Question{ID: "q", Type: model.TypeCheckbox}, "choice question has no options"},
		{"inverted bounds", model.Question{ID: "q", Type: model.TypeSlider, Bounds: model.Bounds{Min: ptr(10), Max: ptr(1)}}, "min is greater than max"},
		{"inverted component bounds", model.Question{
			ID:         "q",
			Type:       model.TypeCombined,
			Components: []model.Component{{Type: "slider", Bounds: model.Bounds{Min: ptr(5), Max: ptr(-5)}}},
		}, "component min is greater than max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, issues := Sanitize(model.Questionnaire{Sections: []model.Section{
				{ID: "s", Questions: []model.Question{tt.question, {ID: "ok", Type: model.TypeNumber}}},
				{ID: "end", Type: model.SectionTypeSummary},
			}})

			require.Len(t, clean.Sections, 2)
			require.Len(t, clean.Sections[0].Questions, 1)
			assert.Equal(t, "ok", clean.Sections[0].Questions[0].ID)
			assert.Equal(t, []string{tt.reason}, reasons(issues))
		})
	}
}

func TestSanitize_DuplicateQuestionIDs(t *testing.T) {
	clean, issues := Sanitize(model.Questionnaire{Sections: []model.Section{
		{ID: "a", Questions: []model.Question{
			{ID: "x", Type: model.TypeNumber},
			{ID: "x", Type: model.TypeCurrency},
		}},
		{ID: "b", Questions: []model.Question{{ID: "x", Type: model.TypeNumber}}},
		{ID: "end", Type: model.SectionTypeSummary},
	}})

	assert.Len(t, clean.Sections[0].Questions, 1)
	assert.Equal(t, model.TypeNumber, clean.Sections[0].Questions[0].Type)
	assert.Empty(t, clean.Sections[1].Questions)
	assert.Equal(t, []string{"duplicate question id", "duplicate question id"}, reasons(issues))
}

func TestSanitize_Defaults(t *testing.T) {
	clean, issues := Sanitize(model.Questionnaire{
		Sections: []model.Section{
			{ID: "a", Questions: []model.Question{{ID: "x", Type: model.TypeNumber}}},
			{ID: "end", Type: model.SectionTypeSummary},
		},
		Defaults: map[string]string{"x": "1", "ghost": "boo"},
	})

	assert.Equal(t, map[string]string{"x": "1"}, clean.Defaults)
	require.Len(t, issues, 1)
	assert.Equal(t, "ghost", issues[0].Question)
}

func TestConfigIssueString(t *testing.T) {
	assert.Equal(t, `section "s" question "q": bad`, ConfigIssue{Section: "s", Question: "q", Reason: "bad"}.String())
	assert.Equal(t, `section "s": bad`, ConfigIssue{Section: "s", Reason: "bad"}.String())
	assert.Equal(t, "bad", ConfigIssue{Reason: "bad"}.String())
}
