package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fundora/kyb-cli/internal/model"
)

// The ESG importance is only asked, and so only shown, for this objective.
const impactObjective = "impact"

// ProfileRows returns the summary page as label/value pairs in display order.
func ProfileRows(p model.InvestorProfile) [][2]string {
	rows := [][2]string{
		{"Capacité d'investissement annuelle", p.FormattedCapacity},
		{"Profil de risque", p.RiskProfile},
		{"", p.RiskDescription},
		{"Horizon d'investissement", p.InvestmentHorizon},
		{"", p.HorizonDescription},
		{"Objectif principal", p.MainObjective},
		{"", p.ObjectiveDescription},
	}
	if p.MainObjective == impactObjective {
		rows = append(rows, [2]string{"Importance ESG", orUnspecified(p.ESGImportance)})
	}
	return append(rows,
		[2]string{"Expérience", string(p.ExperienceLevel)},
		[2]string{"", p.ExperienceDescription},
		[2]string{"Historique de pertes", p.LossHistory},
		[2]string{"Compréhension du Private Equity", p.PEUnderstanding},
	)
}

// Profile writes the summary page as an aligned two-column table.
func Profile(out io.Writer, p model.InvestorProfile) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range ProfileRows(p) {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return w.Flush()
}

func orUnspecified(s string) string {
	if s == "" {
		return "Non spécifié"
	}
	return s
}
