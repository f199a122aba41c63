package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fundora/kyb-cli/internal/model"
)

// ErrInvalidInput is wrapped by every input parsing failure.
var ErrInvalidInput = eris.New("render: invalid input")

// clearInput empties a multi-choice answer.
const clearInput = "-"

// Prompt reads answers line by line.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompt reads from in and writes prompts to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the next trimmed input line. It returns
// io.EOF once input is exhausted.
func (p *Prompt) Line(label string) (string, error) {
	if label != "" {
		if _, err := fmt.Fprint(p.out, label); err != nil {
			return "", eris.Wrap(err, "render: write prompt")
		}
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", eris.Wrap(err, "render: read input")
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// AskSection asks every supported question of section in order and reports
// each accepted answer through onAnswerChange. An empty line keeps the
// current answer. Invalid input is reported and asked again.
func (p *Prompt) AskSection(section model.Section, onAnswerChange func(id string, v model.Value)) error {
	for _, q := range section.Questions {
		if !q.Type.Valid() {
			continue
		}
		for {
			line, err := p.Line(fmt.Sprintf("%s %s ", q.ID, hint(q)))
			if err != nil {
				return err
			}
			if line == "" {
				break
			}
			v, err := ParseInput(q, line)
			if err != nil {
				if _, werr := fmt.Fprintf(p.out, "   ! %s\n", reason(err)); werr != nil {
					return eris.Wrap(werr, "render: write prompt")
				}
				continue
			}
			onAnswerChange(q.ID, v)
			break
		}
	}
	return nil
}

func hint(q model.Question) string {
	switch q.Type {
	case model.TypeRadio:
		return fmt.Sprintf("[1-%d]", len(q.Options))
	case model.TypeCheckbox:
		return fmt.Sprintf("[1-%d, séparés par des virgules, %s pour vider]", len(q.Options), clearInput)
	default:
		return "[montant]"
	}
}

func reason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": render: invalid input"); i >= 0 {
		return msg[:i]
	}
	return msg
}

// ParseInput converts a typed line into a value for q. Choices are accepted
// by 1-based position or by option value; amounts accept spaces, a euro sign
// and a decimal comma. Bounds are enforced for sliders only.
func ParseInput(q model.Question, line string) (model.Value, error) {
	line = strings.TrimSpace(line)
	switch q.Type {
	case model.TypeRadio:
		v, err := choice(q, line)
		if err != nil {
			return model.Value{}, err
		}
		return model.Text(v), nil
	case model.TypeCheckbox:
		if line == clearInput {
			return model.Set(), nil
		}
		var items []string
		for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
			v, err := choice(q, field)
			if err != nil {
				return model.Value{}, err
			}
			items = append(items, v)
		}
		if len(items) == 0 {
			return model.Value{}, eris.Wrap(ErrInvalidInput, "aucune option choisie")
		}
		return model.Set(items...), nil
	case model.TypeNumber, model.TypeCurrency, model.TypeSlider, model.TypeCombined:
		f, err := parseAmount(line)
		if err != nil {
			return model.Value{}, err
		}
		// Only a slider is capped; exact amounts may exceed its range.
		if q.Type == model.TypeSlider && !q.Bounds.Contains(f) {
			return model.Value{}, eris.Wrapf(ErrInvalidInput, "%s hors limites (%s)", formatNumber(f), describeBounds(q.Bounds))
		}
		return model.Number(f), nil
	default:
		return model.Value{}, eris.Wrapf(ErrInvalidInput, "type de question %q non pris en charge", q.Type)
	}
}

func choice(q model.Question, in string) (string, error) {
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(q.Options) {
			return q.Options[n-1].Value, nil
		}
	}
	if q.HasOption(in) {
		return in, nil
	}
	return "", eris.Wrapf(ErrInvalidInput, "choix %q inconnu", in)
}

func parseAmount(in string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '_', '€':
			return -1
		case ',':
			return '.'
		}
		return r
	}, in)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, eris.Wrapf(ErrInvalidInput, "montant %q invalide", in)
	}
	return f, nil
}
