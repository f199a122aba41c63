package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/render"
	"github.com/fundora/kyb-cli/internal/report"
)

var profileCmd = &cobra.Command{
	Use:   "profile <answers.json>",
	Short: "Build the investor profile from a saved answers file",
	Long: `Build the investor profile from a JSON object mapping question ids to
answers, without the interactive flow. Missing answers fall back to the
questionnaire defaults.

Examples:
  profile answers.json
  profile answers.json --format json
  profile answers.json --output profil.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		answers, err := readAnswers(args[0])
		if err != nil {
			return err
		}
		answers = withDefaults(env.Questionnaire, answers)
		p := env.Builder.Build(answers)

		format, _ := cmd.Flags().GetString("format")
		if err := writeProfile(cmd.OutOrStdout(), p, format); err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			return nil
		}
		return saveReport(cmd.ErrOrStderr(), output, reportOptions(cfg), env.Questionnaire, answers, p)
	},
}

func init() {
	profileCmd.Flags().String("format", "table", "output format: table or json")
	profileCmd.Flags().String("output", "", "also write an xlsx report to this path")
	rootCmd.AddCommand(profileCmd)
}

// readAnswers decodes a JSON answers file.
func readAnswers(path string) (model.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read answers %s", path)
	}
	answers := model.Answers{}
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, eris.Wrapf(err, "parse answers %s", path)
	}
	return answers, nil
}

// withDefaults returns answers completed with the questionnaire defaults,
// the same way a fresh session starts.
func withDefaults(q model.Questionnaire, answers model.Answers) model.Answers {
	out := answers.Clone()
	for id, v := range q.Defaults {
		if out.Get(id).Absent() {
			out[id] = model.Text(v)
		}
	}
	return out
}

func writeProfile(out io.Writer, p model.InvestorProfile, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return eris.Wrap(err, "profile: encode json")
		}
		return nil
	case "table", "":
		if err := render.Profile(out, p); err != nil {
			return eris.Wrap(err, "profile: write table")
		}
		return nil
	default:
		return eris.Errorf("profile: unknown format %q (want table or json)", format)
	}
}

func saveReport(out io.Writer, path string, opts report.Options, q model.Questionnaire, answers model.Answers, p model.InvestorProfile) error {
	if err := report.Save(path, q, answers, p, opts); err != nil {
		return err
	}
	fmt.Fprintf(out, "Rapport enregistré : %s\n", path)
	return nil
}
