// Package render draws questionnaire sections on a terminal and turns typed
// input back into answers.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/profile"
)

// Renderer draws one section against the current answers and validation
// errors.
type Renderer interface {
	RenderSection(w io.Writer, section model.Section, answers model.Answers, errs map[string]string) error
}

// widget draws the input part of a single question.
type widget func(p *printer, q model.Question, v model.Value)

// Text is a plain-text Renderer.
type Text struct {
	widgets map[model.QuestionType]widget
	log     *zap.Logger
}

// NewText returns a Text renderer supporting every question type.
func NewText() *Text {
	return &Text{
		widgets: map[model.QuestionType]widget{
			model.TypeRadio:    radioWidget,
			model.TypeCheckbox: checkboxWidget,
			model.TypeNumber:   numberWidget,
			model.TypeCurrency: numberWidget,
			model.TypeSlider:   sliderWidget,
			model.TypeCombined: combinedWidget,
		},
		log: zap.L().With(zap.String("component", "render")),
	}
}

// Supports reports whether t has a widget.
func (r *Text) Supports(t model.QuestionType) bool {
	_, ok := r.widgets[t]
	return ok
}

// RenderSection implements Renderer. Questions with an unsupported type are
// logged and left out.
func (r *Text) RenderSection(w io.Writer, section model.Section, answers model.Answers, errs map[string]string) error {
	p := &printer{w: w}

	p.printf("\n== %s ==\n", section.Title)
	if section.IsSummary() {
		return p.err
	}

	n := 0
	for _, q := range section.Questions {
		draw, ok := r.widgets[q.Type]
		if !ok {
			r.log.Warn("render: unsupported question type, skipping",
				zap.String("section", section.ID),
				zap.String("question", q.ID),
				zap.String("type", string(q.Type)),
			)
			continue
		}

		n++
		p.printf("\n%d. %s", n, q.Text)
		if q.Required {
			p.printf(" *")
		}
		p.printf("\n")
		if q.Help != "" {
			p.printf("   (i) %s\n", q.Help)
		}

		draw(p, q, answers.Get(q.ID))

		if q.Footnote != "" {
			p.printf("   %s\n", q.Footnote)
		}
		if msg, ok := errs[q.ID]; ok {
			p.printf("   ! %s\n", msg)
		}
	}
	return p.err
}

func radioWidget(p *printer, q model.Question, v model.Value) {
	for i, o := range q.Options {
		mark := " "
		if v.Str() == o.Value {
			mark = "x"
		}
		p.printf("   (%s) %d. %s\n", mark, i+1, o.Label)
	}
}

func checkboxWidget(p *printer, q model.Question, v model.Value) {
	selected := map[string]bool{}
	for _, it := range v.Items() {
		selected[it] = true
	}
	for i, o := range q.Options {
		mark := " "
		if selected[o.Value] {
			mark = "x"
		}
		p.printf("   [%s] %d. %s\n", mark, i+1, o.Label)
	}
}

func numberWidget(p *printer, q model.Question, v model.Value) {
	p.printf("   %s%s\n", current(v), unit(q))
	if r := describeBounds(q.NumericBounds()); r != "" {
		p.printf("   %s\n", r)
	}
}

func sliderWidget(p *printer, q model.Question, v model.Value) {
	numberWidget(p, q, v)
	if marks := describeMarks(q.Marks); marks != "" {
		p.printf("   %s\n", marks)
	}
}

// NegativeIncomeWarning is shown under a net income below zero.
const NegativeIncomeWarning = "Attention : Vous renseignez un résultat net négatif, ce qui indique une perte pour l'entreprise."

func combinedWidget(p *printer, q model.Question, v model.Value) {
	if q.Label != "" {
		p.printf("   %s\n", q.Label)
	}
	if n, ok := v.Num(); ok && n < 0 && q.ID == profile.NetIncomeID {
		p.printf("   /!\\ %s\n", NegativeIncomeWarning)
	}
	p.printf("   %s%s\n", current(v), unit(q))
	for _, c := range q.Components {
		if c.Type != string(model.TypeSlider) {
			continue
		}
		if r := describeBounds(c.Bounds); r != "" {
			p.printf("   curseur : %s\n", r)
		}
		if marks := describeMarks(c.Marks); marks != "" {
			p.printf("   %s\n", marks)
		}
	}
}

func current(v model.Value) string {
	if v.Absent() || v.IsEmptyString() {
		return "> (vide)"
	}
	return "> " + v.String()
}

func unit(q model.Question) string {
	if q.Unit == "" {
		return ""
	}
	return " " + q.Unit
}

func describeBounds(b model.Bounds) string {
	var parts []string
	if b.Min != nil {
		parts = append(parts, "min "+formatNumber(*b.Min))
	}
	if b.Max != nil {
		parts = append(parts, "max "+formatNumber(*b.Max))
	}
	if b.Step > 0 {
		parts = append(parts, "pas "+formatNumber(b.Step))
	}
	return strings.Join(parts, ", ")
}

func describeMarks(marks []model.Mark) string {
	if len(marks) == 0 {
		return ""
	}
	labels := make([]string, 0, len(marks))
	for _, m := range marks {
		labels = append(labels, m.Label)
	}
	return "|" + strings.Join(labels, " | ") + "|"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// printer keeps the first write error so widgets can print freely.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
