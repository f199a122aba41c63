package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/questionnaire"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition.yaml]",
	Short: "Check a questionnaire definition",
	Long: `Load a questionnaire definition and list every problem found while
sanitizing it. Without an argument the configured definition is checked
(the built-in KYB questionnaire when none is configured).

Invalid sections and questions are dropped at load time rather than
failing; use --strict to exit non-zero when any issue is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Questionnaire.Path
		if len(args) == 1 {
			path = args[0]
		}

		q, issues, err := questionnaire.Load(path)
		if err != nil {
			return err
		}
		if err := formatIssues(cmd.OutOrStdout(), q, issues); err != nil {
			return err
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(issues) > 0 {
			return eris.Errorf("validate: %d issue(s) found", len(issues))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "fail when any issue is found")
	rootCmd.AddCommand(validateCmd)
}

// formatIssues prints a short inventory of q followed by the issue table.
func formatIssues(out io.Writer, q model.Questionnaire, issues []questionnaire.ConfigIssue) error {
	questions := 0
	for _, s := range q.Sections {
		questions += len(s.Questions)
	}
	fmt.Fprintf(out, "%d sections, %d questions, %d defaults\n", len(q.Sections), questions, len(q.Defaults))

	if len(issues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tQUESTION\tREASON")
	for _, i := range issues {
		fmt.Fprintf(w, "%s\t%s\t%s\n", dash(i.Section), dash(i.Question), i.Reason)
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "validate: write table")
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
