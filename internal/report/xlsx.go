// Package report exports a completed questionnaire to a spreadsheet.
package report

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/questionnaire"
	"github.com/fundora/kyb-cli/internal/render"
)

// Options names the two sheets of the workbook.
type Options struct {
	ProfileSheet string
	AnswersSheet string
}

func (o Options) withDefaults() Options {
	if o.ProfileSheet == "" {
		o.ProfileSheet = "Profil"
	}
	if o.AnswersSheet == "" {
		o.AnswersSheet = "Réponses"
	}
	return o
}

// AnswersHeader is the first row of the answers sheet.
var AnswersHeader = []string{"Section", "Question", "Identifiant", "Réponse"}

// Build creates a workbook with the profile summary and every answer of the
// visible sections.
func Build(q model.Questionnaire, answers model.Answers, p model.InvestorProfile, opts Options) (*xlsx.File, error) {
	opts = opts.withDefaults()
	if opts.ProfileSheet == opts.AnswersSheet {
		return nil, eris.Errorf("report: sheet names must differ, got %q twice", opts.ProfileSheet)
	}

	f := xlsx.NewFile()

	profileSheet, err := f.AddSheet(opts.ProfileSheet)
	if err != nil {
		return nil, eris.Wrapf(err, "report: add sheet %s", opts.ProfileSheet)
	}
	row := profileSheet.AddRow()
	row.AddCell().SetString("Capacité annuelle (€)")
	row.AddCell().SetInt64(p.AnnualInvestmentCapacity)
	for _, r := range render.ProfileRows(p) {
		addStrings(profileSheet, r[0], r[1])
	}

	answersSheet, err := f.AddSheet(opts.AnswersSheet)
	if err != nil {
		return nil, eris.Wrapf(err, "report: add sheet %s", opts.AnswersSheet)
	}
	addStrings(answersSheet, AnswersHeader...)
	for _, section := range q.Sections {
		if section.IsSummary() || !questionnaire.ShouldShow(section, answers) {
			continue
		}
		for _, question := range section.Questions {
			row := answersSheet.AddRow()
			row.AddCell().SetString(section.Title)
			row.AddCell().SetString(question.Text)
			row.AddCell().SetString(question.ID)
			answerCell(row.AddCell(), question, answers.Get(question.ID))
		}
	}

	return f, nil
}

// Save builds the workbook and writes it to path.
func Save(path string, q model.Questionnaire, answers model.Answers, p model.InvestorProfile, opts Options) error {
	f, err := Build(q, answers, p, opts)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, q model.Questionnaire, answers model.Answers, p model.InvestorProfile, opts Options) error {
	f, err := Build(q, answers, p, opts)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// answerCell writes numbers as numbers and choices by their labels.
func answerCell(cell *xlsx.Cell, q model.Question, v model.Value) {
	if n, ok := v.Num(); ok {
		cell.SetFloat(n)
		return
	}
	if v.Kind() == model.KindBool || !q.Type.Choice() {
		cell.SetString(v.String())
		return
	}

	labels := map[string]string{}
	for _, o := range q.Options {
		labels[o.Value] = o.Label
	}
	codes := v.Items()
	if s := v.Str(); s != "" {
		codes = []string{s}
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if l, ok := labels[c]; ok {
			out = append(out, l)
			continue
		}
		out = append(out, c)
	}
	cell.SetString(strings.Join(out, ", "))
}
