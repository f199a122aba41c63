package scorer

import (
	"math"
)

const (
	// MinCapacity is the floor of every recommendation, in euros.
	MinCapacity int64 = 100

	esgHighImportance   = "haute"
	esgBonus            = 1.1
	lossMakingPenalty   = 0.5
	turnoverDivisor     = 10
	balanceDivisor      = 20
	equityDivisor       = 5
	netIncomeMultiplier = 2
	componentCount      = 4
)

// Financials holds the four company indicators, in euros. Any value may be
// negative; missing values are zero.
type Financials struct {
	AnnualTurnover    float64 `json:"annual_turnover"`
	NetIncome         float64 `json:"net_income"`
	BalanceSheetTotal float64 `json:"balance_sheet_total"`
	EquityCapital     float64 `json:"equity_capital"`
}

// ESGPreferences carries the ESG answers that influence the capacity.
type ESGPreferences struct {
	Importance string `json:"importance"`
}

// Preferences holds the categorical profile codes.
type Preferences struct {
	Risk      string          `json:"risk"`
	Horizon   string          `json:"horizon"`
	Objective string          `json:"objective"`
	ESG       *ESGPreferences `json:"esg,omitempty"`
}

// Result is the full breakdown of a capacity computation.
type Result struct {
	Components   map[string]float64 `json:"components"`
	Base         float64            `json:"base"`
	Coefficients map[string]float64 `json:"coefficients"`
	ESGBonus     bool               `json:"esg_bonus"`
	LossPenalty  bool               `json:"loss_penalty"`
	Adjusted     float64            `json:"adjusted"`
	Capacity     int64              `json:"capacity"`
	FloorApplied bool               `json:"floor_applied"`
}

var defaultTables = DefaultTables()

// ComputeCapacity returns the adjusted annual investment capacity using the
// built-in coefficient tables. The result is never below MinCapacity.
func ComputeCapacity(fin Financials, risk, horizon, objective string, esg *ESGPreferences) int64 {
	return defaultTables.Capacity(fin, risk, horizon, objective, esg)
}

// Capacity is ComputeCapacity against t.
func (t Tables) Capacity(fin Financials, risk, horizon, objective string, esg *ESGPreferences) int64 {
	return t.Compute(fin, Preferences{Risk: risk, Horizon: horizon, Objective: objective, ESG: esg}).Capacity
}

// Compute runs the capacity algorithm and returns every intermediate value.
// Unknown codes resolve to a neutral coefficient and non-finite amounts count
// as zero; it never fails.
func (t Tables) Compute(fin Financials, prefs Preferences) Result {
	turnover := math.Abs(finite(fin.AnnualTurnover)) / turnoverDivisor
	balance := math.Abs(finite(fin.BalanceSheetTotal)) / balanceDivisor
	equity := math.Abs(finite(fin.EquityCapital)) / equityDivisor
	netIncome := finite(fin.NetIncome)
	income := math.Abs(netIncome) * netIncomeMultiplier

	base := (turnover + balance + equity + income) / componentCount

	riskCoeff := t.Risk.Lookup(prefs.Risk)
	horizonCoeff := t.Horizon.Lookup(prefs.Horizon)
	objectiveCoeff := t.Objective.Lookup(prefs.Objective)

	adjusted := base * riskCoeff * horizonCoeff * objectiveCoeff

	res := Result{
		Components: map[string]float64{
			"turnover":      turnover,
			"balance_sheet": balance,
			"equity":        equity,
			"net_income":    income,
		},
		Base: base,
		Coefficients: map[string]float64{
			"risk":      riskCoeff,
			"horizon":   horizonCoeff,
			"objective": objectiveCoeff,
		},
	}

	if prefs.ESG != nil && prefs.ESG.Importance == esgHighImportance {
		adjusted *= esgBonus
		res.ESGBonus = true
	}
	if netIncome < 0 {
		adjusted *= lossMakingPenalty
		res.LossPenalty = true
	}

	res.Adjusted = adjusted
	res.Capacity, res.FloorApplied = floorRound(adjusted)
	return res
}

// floorRound rounds half away from zero and applies MinCapacity. Values past
// the int64 range saturate.
func floorRound(v float64) (int64, bool) {
	r := math.Round(v)
	if r >= math.MaxInt64 {
		return math.MaxInt64, false
	}
	if r < float64(MinCapacity) {
		return MinCapacity, true
	}
	return int64(r), false
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
