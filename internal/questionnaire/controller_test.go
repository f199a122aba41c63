package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/profile"
	"github.com/fundora/kyb-cli/internal/scorer"
)

func ptr(f float64) *float64 { return &f }

func newBuilder() *profile.Builder {
	return profile.NewBuilder(scorer.DefaultTables())
}

// chained has two conditional sections in a row, both gated on the first
// section's answer, followed by the summary.
func chained() model.Questionnaire {
	yesNo := []model.Option{{Value: "OUI", Label: "OUI"}, {Value: "NON", Label: "NON"}}
	return model.Questionnaire{
		Sections: []model.Section{
			{
				ID: "start",
				Questions: []model.Question{
					{ID: "gate", Type: model.TypeRadio, Options: yesNo, Required: true},
				},
			},
			{
				ID:          "first",
				Conditional: &model.Condition{DependsOn: "gate", ShowWhen: model.ShowWhen{"OUI"}},
				Questions:   []model.Question{{ID: "a", Type: model.TypeNumber}},
			},
			{
				ID:          "second",
				Conditional: &model.Condition{DependsOn: "gate", ShowWhen: model.ShowWhen{"OUI"}},
				Questions:   []model.Question{{ID: "b", Type: model.TypeNumber}},
			},
			{ID: "summary", Type: model.SectionTypeSummary},
		},
	}
}

func TestNewController_Defaults(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)

	c := NewController(q, newBuilder())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, "companyInformation", c.CurrentSection().ID)
	assert.False(t, c.IsTerminal())
	assert.Empty(t, c.Errors())

	answers := c.Answers()
	assert.Equal(t, model.Text("patrimoine"), answers.Get("mainObjective_company"))
	assert.Equal(t, model.Text("moyen"), answers.Get("investmentHorizon_company"))
	assert.Equal(t, model.Text("modere"), answers.Get("riskLevel_company"))
}

func TestRecordAnswer_ReplacesWithoutSideEffects(t *testing.T) {
	c := NewController(chained(), newBuilder())

	assert.False(t, c.Advance())
	require.Len(t, c.Errors(), 1)

	c.RecordAnswer("gate", model.Text("NON"))
	c.RecordAnswer("gate", model.Text("OUI"))

	assert.Equal(t, model.Text("OUI"), c.Answers().Get("gate"))
	assert.Equal(t, 0, c.Index())
	assert.Len(t, c.Errors(), 1, "recording an answer does not revalidate")
}

func TestAdvance_ValidationBlocks(t *testing.T) {
	c := NewController(chained(), newBuilder())

	assert.False(t, c.Advance())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, map[string]string{"gate": RequiredMessage}, c.Errors())

	c.RecordAnswer("gate", model.Text("OUI"))
	assert.True(t, c.Advance())
	assert.Equal(t, "first", c.CurrentSection().ID)
	assert.Empty(t, c.Errors())
}

func TestAdvance_SkipsHiddenChainToSummary(t *testing.T) {
	c := NewController(chained(), newBuilder())
	c.RecordAnswer("gate", model.Text("NON"))

	assert.True(t, c.Advance())
	assert.Equal(t, 3, c.Index())
	assert.True(t, c.IsTerminal())

	// No further target from the summary.
	assert.False(t, c.Advance())
	assert.Equal(t, 3, c.Index())
}

func TestAdvance_VisibleChain(t *testing.T) {
	c := NewController(chained(), newBuilder())
	c.RecordAnswer("gate", model.Text("OUI"))

	var visited []string
	for c.Advance() {
		visited = append(visited, c.CurrentSection().ID)
	}
	assert.Equal(t, []string{"first", "second", "summary"}, visited)
}

func TestAdvance_ClampsWhenEverythingAfterIsHidden(t *testing.T) {
	q := chained()
	// Drop the summary marker so the last section is a plain hidden one.
	q.Sections[3] = model.Section{
		ID:          "tail",
		Conditional: &model.Condition{DependsOn: "gate", ShowWhen: model.ShowWhen{"OUI"}},
	}
	c := NewController(q, newBuilder())
	c.RecordAnswer("gate", model.Text("NON"))

	assert.True(t, c.Advance())
	assert.Equal(t, 3, c.Index(), "cursor stops on the last section")
	assert.False(t, c.IsTerminal(), "last section is not a summary")
}

func TestRetreat(t *testing.T) {
	t.Run("first section is a no-op", func(t *testing.T) {
		c := NewController(chained(), newBuilder())
		c.Retreat()
		assert.Equal(t, 0, c.Index())
	})

	t.Run("skips hidden sections backwards", func(t *testing.T) {
		c := NewController(chained(), newBuilder())
		c.RecordAnswer("gate", model.Text("NON"))
		require.True(t, c.Advance())
		require.True(t, c.IsTerminal())

		c.Retreat()
		assert.Equal(t, 0, c.Index())
	})

	t.Run("visible sections are revisited in order", func(t *testing.T) {
		c := NewController(chained(), newBuilder())
		c.RecordAnswer("gate", model.Text("OUI"))
		for c.Advance() {
		}

		c.Retreat()
		assert.Equal(t, "second", c.CurrentSection().ID)
		c.Retreat()
		assert.Equal(t, "first", c.CurrentSection().ID)
		c.Retreat()
		assert.Equal(t, "start", c.CurrentSection().ID)
	})

	t.Run("clears errors", func(t *testing.T) {
		q := chained()
		q.Sections[1].Questions[0].Required = true
		c := NewController(q, newBuilder())
		c.RecordAnswer("gate", model.Text("OUI"))
		require.True(t, c.Advance())
		require.False(t, c.Advance())
		require.NotEmpty(t, c.Errors())

		c.Retreat()
		assert.Empty(t, c.Errors())
	})
}

func TestValidate(t *testing.T) {
	combined := model.Question{ID: "amount", Type: model.TypeCombined, Required: true}
	number := model.Question{ID: "amount", Type: model.TypeNumber, Required: true}
	currency := model.Question{ID: "amount", Type: model.TypeCurrency, Required: true}
	radio := model.Question{ID: "amount", Type: model.TypeRadio, Required: true, Options: []model.Option{{Value: "x"}}}
	checkbox := model.Question{ID: "amount", Type: model.TypeCheckbox, Required: true, Options: []model.Option{{Value: "understood"}}}
	optional := model.Question{ID: "amount", Type: model.TypeNumber}

	tests := []struct {
		name     string
		question model.Question
		value    model.Value
		wantErr  bool
	}{
		{"combined zero", combined, model.Number(0), false},
		{"combined negative", combined, model.Number(-50_000), false},
		{"combined empty string", combined, model.Text(""), true},
		{"combined absent", combined, model.Value{}, true},
		{"combined text amount", combined, model.Text("120000"), false},
		{"number zero", number, model.Number(0), false},
		{"number value", number, model.Number(12), false},
		{"number absent", number, model.Value{}, true},
		{"currency zero", currency, model.Number(0), false},
		{"currency empty string", currency, model.Text(""), true},
		{"radio chosen", radio, model.Text("x"), false},
		{"radio empty", radio, model.Text(""), true},
		{"checkbox ticked", checkbox, model.Set("understood"), false},
		{"checkbox unticked", checkbox, model.Set(), true},
		{"acknowledged", checkbox, model.Bool(true), false},
		{"not acknowledged", checkbox, model.Bool(false), true},
		{"optional absent", optional, model.Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := model.Section{ID: "s", Questions: []model.Question{tt.question}}
			answers := model.Answers{}
			if !tt.value.Absent() {
				answers[tt.question.ID] = tt.value
			}

			errs := Validate(section, answers)
			if tt.wantErr {
				assert.Equal(t, map[string]string{"amount": RequiredMessage}, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestShouldShow(t *testing.T) {
	cond := &model.Condition{DependsOn: "mainObjective_company", ShowWhen: model.ShowWhen{"impact", "entrepreneuriat"}}
	section := model.Section{ID: "esg", Conditional: cond}

	tests := []struct {
		name    string
		answers model.Answers
		want    bool
	}{
		{"member", model.Answers{"mainObjective_company": model.Text("impact")}, true},
		{"other member", model.Answers{"mainObjective_company": model.Text("entrepreneuriat")}, true},
		{"not a member", model.Answers{"mainObjective_company": model.Text("patrimoine")}, false},
		{"case sensitive", model.Answers{"mainObjective_company": model.Text("Impact")}, false},
		{"absent", model.Answers{}, false},
		{"multi-choice never matches", model.Answers{"mainObjective_company": model.Set("impact")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShow(section, tt.answers))
		})
	}

	assert.True(t, ShouldShow(model.Section{ID: "plain"}, model.Answers{}))
}

func TestInvestorProfile(t *testing.T) {
	c := NewController(chained(), newBuilder())

	_, err := c.InvestorProfile()
	assert.ErrorIs(t, err, ErrNotTerminal)

	c.RecordAnswer("gate", model.Text("NON"))
	c.RecordAnswer(profile.AnnualTurnoverID, model.Number(1_000_000))
	c.RecordAnswer(profile.NetIncomeID, model.Number(200_000))
	c.RecordAnswer(profile.BalanceSheetTotalID, model.Number(800_000))
	c.RecordAnswer(profile.EquityCapitalID, model.Number(400_000))
	c.RecordAnswer(profile.RiskID, model.Text("modere"))
	c.RecordAnswer(profile.HorizonID, model.Text("long"))
	c.RecordAnswer(profile.ObjectiveID, model.Text("patrimoine"))
	require.True(t, c.Advance())

	p, err := c.InvestorProfile()
	require.NoError(t, err)
	assert.Equal(t, int64(161_200), p.AnnualInvestmentCapacity)

	again, err := c.InvestorProfile()
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestReset(t *testing.T) {
	q := chained()
	q.Defaults = map[string]string{"gate": "OUI"}
	c := NewController(q, newBuilder())
	c.RecordAnswer("a", model.Number(3))
	require.True(t, c.Advance())

	c.Reset()
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, model.Answers{"gate": model.Text("OUI")}, c.Answers())
	assert.Empty(t, c.Errors())
}

func TestAnswersAndErrorsAreCopies(t *testing.T) {
	c := NewController(chained(), newBuilder())
	c.Advance()

	c.Answers()["gate"] = model.Text("OUI")
	c.Errors()["gate"] = "changed"

	assert.True(t, c.Answers().Get("gate").Absent())
	assert.Equal(t, RequiredMessage, c.Errors()["gate"])
}

func TestFullDefaultQuestionnaire(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)
	c := NewController(q, newBuilder())

	answers := map[string]model.Value{
		"annualTurnover":                    model.Number(1_000_000),
		"balanceSheetTotal":                 model.Number(800_000),
		"netIncome":                         model.Number(0),
		"equityCapital":                     model.Number(-100_000),
		"understandRisks_company":           model.Set("understood"),
		"understandLiquidity_company":       model.Set("understood"),
		"understandDiversification_company": model.Set("understood"),
	}
	for id, v := range answers {
		c.RecordAnswer(id, v)
	}

	var visited []string
	for c.Advance() {
		visited = append(visited, c.CurrentSection().ID)
	}
	// patrimoine by default, so the ESG block is skipped.
	assert.Equal(t, []string{
		"investmentObjectives",
		"financialSituation",
		"experienceAndKnowledge",
		"commitments",
		"profileSummary",
	}, visited)
	assert.True(t, c.IsTerminal())

	p, err := c.InvestorProfile()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.AnnualInvestmentCapacity, scorer.MinCapacity)
	assert.Equal(t, "moyen", p.InvestmentHorizon)

	// Switching to impact reveals the ESG block on the way back.
	c.RecordAnswer("mainObjective_company", model.Text("impact"))
	c.Retreat()
	c.Retreat()
	c.Retreat()
	c.Retreat()
	assert.Equal(t, "esgBlock", c.CurrentSection().ID)
}

func TestCommitmentsRequireTickedBoxes(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)

	var commitments model.Section
	for _, s := range q.Sections {
		if s.ID == "commitments" {
			commitments = s
		}
	}
	require.Len(t, commitments.Questions, 3)

	answers := model.Answers{
		"understandRisks_company":           model.Set("understood"),
		"understandLiquidity_company":       model.Set(),
		"understandDiversification_company": model.Set("understood"),
	}
	assert.Equal(t, map[string]string{"understandLiquidity_company": RequiredMessage}, Validate(commitments, answers))
}
