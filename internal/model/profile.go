package model

// ExperienceLevel classifies the legal representative's investment experience.
type ExperienceLevel string

const (
	ExperienceHigh   ExperienceLevel = "élevée"
	ExperienceMedium ExperienceLevel = "moyenne"
	ExperienceLow    ExperienceLevel = "faible"
)

// InvestorProfile is the summary derived from a completed answer set. It is
// computed on demand and never stored.
type InvestorProfile struct {
	AnnualInvestmentCapacity int64  `json:"annual_investment_capacity"`
	FormattedCapacity        string `json:"formatted_capacity"`

	RiskProfile          string `json:"risk_profile"`
	RiskDescription      string `json:"risk_description"`
	InvestmentHorizon    string `json:"investment_horizon"`
	HorizonDescription   string `json:"horizon_description"`
	MainObjective        string `json:"main_objective"`
	ObjectiveDescription string `json:"objective_description"`
	ESGImportance        string `json:"esg_importance,omitempty"`

	ExperienceLevel       ExperienceLevel `json:"experience_level"`
	ExperienceDescription string          `json:"experience_description"`
	LossHistory           string          `json:"loss_history"`
	PEUnderstanding       string          `json:"pe_understanding"`
}
