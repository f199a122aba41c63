// Package scorer computes the recommended annual investment capacity of a
// company from its financial indicators and investment preferences.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fundora/kyb-cli/internal/config"
)

// neutralCoefficient is applied for any code missing from a table.
const neutralCoefficient = 1.0

// CoefficientTable maps a categorical code to a multiplicative weight.
// It is immutable once built.
type CoefficientTable struct {
	name    string
	weights map[string]float64
}

// NewCoefficientTable copies weights into a new table.
func NewCoefficientTable(name string, weights map[string]float64) CoefficientTable {
	cp := make(map[string]float64, len(weights))
	for k, w := range weights {
		cp[k] = w
	}
	return CoefficientTable{name: name, weights: cp}
}

// Name returns the table name used in logs and validation messages.
func (t CoefficientTable) Name() string { return t.name }

// Lookup returns the weight for code, or 1.0 when the code is unknown or
// carries a zero weight.
func (t CoefficientTable) Lookup(code string) float64 {
	if w, ok := t.weights[code]; ok && w != 0 {
		return w
	}
	return neutralCoefficient
}

// Has reports whether the table defines code.
func (t CoefficientTable) Has(code string) bool {
	_, ok := t.weights[code]
	return ok
}

// Codes returns the defined codes in sorted order.
func (t CoefficientTable) Codes() []string {
	codes := make([]string, 0, len(t.weights))
	for k := range t.weights {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// Weights returns a copy of the table contents.
func (t CoefficientTable) Weights() map[string]float64 {
	cp := make(map[string]float64, len(t.weights))
	for k, w := range t.weights {
		cp[k] = w
	}
	return cp
}

// Tables groups the three profile coefficient tables.
type Tables struct {
	Risk      CoefficientTable
	Horizon   CoefficientTable
	Objective CoefficientTable
}

// Built-in weights.
var (
	defaultRisk = map[string]float64{
		"faible": 0.5, // prudent
		"modere": 1.0, // balanced
		"eleve":  1.5, // dynamic
	}
	defaultHorizon = map[string]float64{
		"court": 0.7, // < 2 years
		"moyen": 1.0, // 2-5 years
		"long":  1.3, // > 5 years
	}
	defaultObjective = map[string]float64{
		"patrimoine":       0.8,
		"impact":           1.0,
		"entrepreneuriat":  1.2,
		"reinvestissement": 1.1,
	}
)

// DefaultTables returns the built-in coefficient tables.
func DefaultTables() Tables {
	return Tables{
		Risk:      NewCoefficientTable("risk", defaultRisk),
		Horizon:   NewCoefficientTable("horizon", defaultHorizon),
		Objective: NewCoefficientTable("objective", defaultObjective),
	}
}

// TablesFromConfig builds tables from configuration. A table left empty in
// config keeps its built-in weights.
func TablesFromConfig(c config.ScorerConfig) Tables {
	t := DefaultTables()
	if len(c.Risk) > 0 {
		t.Risk = NewCoefficientTable("risk", c.Risk)
	}
	if len(c.Horizon) > 0 {
		t.Horizon = NewCoefficientTable("horizon", c.Horizon)
	}
	if len(c.Objective) > 0 {
		t.Objective = NewCoefficientTable("objective", c.Objective)
	}
	return t
}

// ValidateTables checks that every table is non-empty and carries strictly
// positive weights under non-blank codes.
func ValidateTables(t Tables) error {
	var errs []string

	for _, table := range []CoefficientTable{t.Risk, t.Horizon, t.Objective} {
		if len(table.weights) == 0 {
			errs = append(errs, fmt.Sprintf("%s table must not be empty", table.name))
			continue
		}
		for _, code := range table.Codes() {
			if strings.TrimSpace(code) == "" {
				errs = append(errs, fmt.Sprintf("%s table has a blank code", table.name))
			}
			if w := table.weights[code]; w <= 0 {
				errs = append(errs, fmt.Sprintf("%s.%s must be > 0, got %g", table.name, code, w))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
