package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/questionnaire"
	"github.com/fundora/kyb-cli/internal/render"
)

// errAborted is returned when the user quits or input runs out before the
// summary.
var errAborted = eris.New("fill: questionnaire aborted")

const navPrompt = "[Entrée] suivant, p précédent, q quitter > "

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the KYB questionnaire interactively",
	Long: `Walk through the questionnaire section by section in the terminal.

Each question is asked in turn: type the option number or value for choices,
a comma-separated list for checkboxes, or an amount for numeric fields. An
empty line keeps the current answer and "-" clears a checkbox. After each
section, press Enter to continue, "p" to go back or "q" to quit.

Examples:
  fill
  fill --answers draft.json --output profil.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		ctrl := questionnaire.NewController(env.Questionnaire, env.Builder)
		if path, _ := cmd.Flags().GetString("answers"); path != "" {
			preset, err := readAnswers(path)
			if err != nil {
				return err
			}
			preload(ctrl, preset)
		}

		out := cmd.OutOrStdout()
		p, err := fill(ctrl, render.NewText(), render.NewPrompt(cmd.InOrStdin(), out), out)
		if errors.Is(err, errAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Questionnaire interrompu.")
			return nil
		}
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			return nil
		}
		return saveReport(cmd.ErrOrStderr(), output, reportOptions(cfg), ctrl.Questionnaire(), ctrl.Answers(), p)
	},
}

func init() {
	fillCmd.Flags().String("answers", "", "JSON answers file to start from")
	fillCmd.Flags().String("output", "", "write an xlsx report to this path once the summary is reached")
	rootCmd.AddCommand(fillCmd)
}

// preload records answers in id order so runs are reproducible.
func preload(ctrl *questionnaire.Controller, answers model.Answers) {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ctrl.RecordAnswer(id, answers[id])
	}
	zap.L().Debug("preloaded answers", zap.Int("count", len(ids)))
}

// fill drives ctrl until the summary section and returns its profile. It
// returns errAborted when the user quits or input is exhausted.
func fill(ctrl *questionnaire.Controller, renderer render.Renderer, prompt *render.Prompt, out io.Writer) (model.InvestorProfile, error) {
	for {
		section := ctrl.CurrentSection()
		if err := renderer.RenderSection(out, section, ctrl.Answers(), ctrl.Errors()); err != nil {
			return model.InvestorProfile{}, err
		}

		if ctrl.IsTerminal() {
			p, err := ctrl.InvestorProfile()
			if err != nil {
				return model.InvestorProfile{}, err
			}
			if err := render.Profile(out, p); err != nil {
				return model.InvestorProfile{}, eris.Wrap(err, "fill: write profile")
			}
			return p, nil
		}

		if err := prompt.AskSection(section, ctrl.RecordAnswer); err != nil {
			return model.InvestorProfile{}, inputErr(err)
		}

		nav, err := prompt.Line(navPrompt)
		if err != nil {
			return model.InvestorProfile{}, inputErr(err)
		}
		switch strings.ToLower(nav) {
		case "q":
			return model.InvestorProfile{}, errAborted
		case "p":
			ctrl.Retreat()
		default:
			// A blocked advance leaves the errors on the controller; the
			// next render shows them.
			ctrl.Advance()
		}
	}
}

func inputErr(err error) error {
	if errors.Is(err, io.EOF) {
		return errAborted
	}
	return err
}
