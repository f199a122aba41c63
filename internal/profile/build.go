package profile

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/scorer"
)

// Question ids read by the summary.
const (
	AnnualTurnoverID    = "annualTurnover"
	NetIncomeID         = "netIncome"
	BalanceSheetTotalID = "balanceSheetTotal"
	EquityCapitalID     = "equityCapital"
	RiskID              = "riskLevel_company"
	HorizonID           = "investmentHorizon_company"
	ObjectiveID         = "mainObjective_company"
	ESGImportanceID     = "esgImportance_company"
	HasInvestedID       = "hasInvested_company"
	UnderstandsPEID     = "understandPE_company"
	InvestedProductsID  = "investedProducts_company"
	LossesID            = "investmentLosses_company"
	PEUnderstandingID   = "peFundsUnderstanding_company"
)

// Display codes used when the matching answer is missing.
const (
	defaultRisk      = "modere"
	defaultHorizon   = "moyen"
	defaultObjective = "patrimoine"
)

// Builder computes investor profiles against a fixed set of coefficient
// tables. It holds no mutable state and may be shared between sessions.
type Builder struct {
	tables scorer.Tables
	lang   language.Tag
}

// NewBuilder creates a Builder. Amounts are formatted for French readers.
func NewBuilder(tables scorer.Tables) *Builder {
	return &Builder{
		tables: tables,
		lang:   language.French,
	}
}

// Financials extracts the four indicators, coercing anything non-numeric to 0.
func Financials(answers model.Answers) scorer.Financials {
	return scorer.Financials{
		AnnualTurnover:    answers.Get(AnnualTurnoverID).Float(),
		NetIncome:         answers.Get(NetIncomeID).Float(),
		BalanceSheetTotal: answers.Get(BalanceSheetTotalID).Float(),
		EquityCapital:     answers.Get(EquityCapitalID).Float(),
	}
}

// Preferences extracts the categorical codes fed to the scorer. Missing
// answers stay empty so they resolve to the neutral coefficient.
func Preferences(answers model.Answers) scorer.Preferences {
	return scorer.Preferences{
		Risk:      answers.Get(RiskID).Str(),
		Horizon:   answers.Get(HorizonID).Str(),
		Objective: answers.Get(ObjectiveID).Str(),
		ESG:       &scorer.ESGPreferences{Importance: answers.Get(ESGImportanceID).Str()},
	}
}

// Build derives the investor profile. It reads answers only and returns the
// same profile for the same answers.
func (b *Builder) Build(answers model.Answers) model.InvestorProfile {
	prefs := Preferences(answers)
	capacity := b.tables.Compute(Financials(answers), prefs).Capacity

	level := ClassifyExperience(
		answers.Get(HasInvestedID).Str(),
		answers.Get(UnderstandsPEID).Str(),
		answers.Get(InvestedProductsID),
	)

	return model.InvestorProfile{
		AnnualInvestmentCapacity: capacity,
		FormattedCapacity:        b.FormatAmount(capacity),

		RiskProfile:          orDefault(prefs.Risk, defaultRisk),
		RiskDescription:      RiskDescription(prefs.Risk),
		InvestmentHorizon:    orDefault(prefs.Horizon, defaultHorizon),
		HorizonDescription:   HorizonDescription(prefs.Horizon),
		MainObjective:        orDefault(prefs.Objective, defaultObjective),
		ObjectiveDescription: ObjectiveDescription(prefs.Objective),
		ESGImportance:        prefs.ESG.Importance,

		ExperienceLevel:       level,
		ExperienceDescription: ExperienceDescription(level),
		LossHistory:           LossDescription(answers.Get(LossesID).Str()),
		PEUnderstanding:       PEUnderstandingDescription(answers.Get(PEUnderstandingID).Str()),
	}
}

// FormatAmount renders a whole euro amount with French digit grouping,
// e.g. "161 200 €".
func (b *Builder) FormatAmount(amount int64) string {
	return message.NewPrinter(b.lang).Sprintf("%d €", amount)
}

func orDefault(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}
