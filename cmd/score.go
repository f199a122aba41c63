package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fundora/kyb-cli/internal/profile"
	"github.com/fundora/kyb-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the annual investment capacity from raw figures",
	Long: `Compute the annual investment capacity of a company without going through
the questionnaire.

Examples:
  # Default preferences (modere, moyen, patrimoine)
  score --turnover 1000000 --net-income 50000 --balance 500000 --equity 200000

  # Aggressive profile with a strong ESG preference, as JSON
  score --turnover 1000000 --risk eleve --horizon long --objective entrepreneuriat --esg haute --format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		var fin scorer.Financials
		fin.AnnualTurnover, _ = f.GetFloat64("turnover")
		fin.NetIncome, _ = f.GetFloat64("net-income")
		fin.BalanceSheetTotal, _ = f.GetFloat64("balance")
		fin.EquityCapital, _ = f.GetFloat64("equity")

		var prefs scorer.Preferences
		prefs.Risk, _ = f.GetString("risk")
		prefs.Horizon, _ = f.GetString("horizon")
		prefs.Objective, _ = f.GetString("objective")
		if esg, _ := f.GetString("esg"); esg != "" {
			prefs.ESG = &scorer.ESGPreferences{Importance: esg}
		}
		format, _ := f.GetString("format")

		return writeScore(cmd.OutOrStdout(), env.Builder, env.Tables.Compute(fin, prefs), format)
	},
}

func init() {
	f := scoreCmd.Flags()
	f.Float64("turnover", 0, "annual turnover in euros")
	f.Float64("net-income", 0, "net income in euros, negative for a loss")
	f.Float64("balance", 0, "balance sheet total in euros")
	f.Float64("equity", 0, "equity capital in euros")
	f.String("risk", "modere", "risk level (faible, modere, eleve)")
	f.String("horizon", "moyen", "investment horizon (court, moyen, long)")
	f.String("objective", "patrimoine", "main objective (patrimoine, impact, entrepreneuriat, reinvestissement)")
	f.String("esg", "", "ESG importance; haute grants the ESG bonus")
	f.String("format", "table", "output format: table or json")
	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	scorer.Result
	FormattedCapacity string `json:"formatted_capacity"`
}

// writeScore prints a capacity breakdown in the requested format.
func writeScore(out io.Writer, b *profile.Builder, res scorer.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(scoreOutput{Result: res, FormattedCapacity: b.FormatAmount(res.Capacity)}); err != nil {
			return eris.Wrap(err, "score: encode json")
		}
		return nil
	case "table", "":
		return formatScore(out, b, res)
	default:
		return eris.Errorf("score: unknown format %q (want table or json)", format)
	}
}

func formatScore(out io.Writer, b *profile.Builder, res scorer.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tVALUE")
	for _, k := range sortedKeys(res.Components) {
		fmt.Fprintf(w, "component %s\t%.2f\n", k, res.Components[k])
	}
	fmt.Fprintf(w, "base\t%.2f\n", res.Base)
	for _, k := range sortedKeys(res.Coefficients) {
		fmt.Fprintf(w, "coefficient %s\t%.2f\n", k, res.Coefficients[k])
	}
	fmt.Fprintf(w, "esg bonus\t%t\n", res.ESGBonus)
	fmt.Fprintf(w, "loss penalty\t%t\n", res.LossPenalty)
	fmt.Fprintf(w, "adjusted\t%.2f\n", res.Adjusted)
	fmt.Fprintf(w, "floor applied\t%t\n", res.FloorApplied)
	fmt.Fprintf(w, "capacity\t%s\n", b.FormatAmount(res.Capacity))
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "score: write table")
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
