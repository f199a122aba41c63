package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/config"
	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/profile"
	"github.com/fundora/kyb-cli/internal/questionnaire"
	"github.com/fundora/kyb-cli/internal/report"
	"github.com/fundora/kyb-cli/internal/scorer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kyb-cli",
	Short: "KYB investor profile questionnaire",
	Long:  "Collects a company's KYB answers section by section, scores its annual investment capacity and builds the investor profile summary.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		mode := "cli"
		if cmd.Name() == "serve" {
			mode = "serve"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		return scorer.ValidateTables(scorer.TablesFromConfig(cfg.Scorer))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// appEnv bundles the questionnaire and scoring setup shared by commands.
type appEnv struct {
	Questionnaire model.Questionnaire
	Issues        []questionnaire.ConfigIssue
	Tables        scorer.Tables
	Builder       *profile.Builder
}

// initEnv loads the configured questionnaire and coefficient tables.
func initEnv(c *config.Config) (*appEnv, error) {
	q, issues, err := questionnaire.Load(c.Questionnaire.Path)
	if err != nil {
		return nil, err
	}
	tables := scorer.TablesFromConfig(c.Scorer)
	return &appEnv{
		Questionnaire: q,
		Issues:        issues,
		Tables:        tables,
		Builder:       profile.NewBuilder(tables),
	}, nil
}

func reportOptions(c *config.Config) report.Options {
	return report.Options{
		ProfileSheet: c.Report.ProfileSheet,
		AnswersSheet: c.Report.AnswersSheet,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
