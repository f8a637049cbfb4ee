package evaluate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/section"
)

var (
	// ErrEmptyExemplar is returned when the exemplar has no sections to
	// score against.
	ErrEmptyExemplar = errors.New("exemplar has no sections")
	// ErrMalformedScore is returned when a comparison reply is not a number.
	ErrMalformedScore = errors.New("malformed score")
)

// Evaluator scores generated sections against exemplar sections.
type Evaluator struct {
	llm    llm.Completer
	runner section.Runner
	log    *slog.Logger
}

func NewEvaluator(c llm.Completer, runner section.Runner, log *slog.Logger) *Evaluator {
	if runner == nil {
		runner = section.Sequential{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{llm: c, runner: runner, log: log}
}

// Compare scores every exemplar category. Categories missing from generated
// score 0 without a model call. OverallScore is the mean over all exemplar
// categories.
func (e *Evaluator) Compare(ctx context.Context, generated *document.GeneratedDocument, exemplar *document.ExemplarDocument) (*document.EvaluationResult, error) {
	if exemplar == nil || len(exemplar.Sections) == 0 {
		return nil, ErrEmptyExemplar
	}
	if generated == nil {
		generated = document.NewGeneratedDocument()
	}

	cats := exemplar.OrderedCategories()
	scores := make([]float64, len(cats))
	err := e.runner.Run(ctx, len(cats), func(ctx context.Context, i int) error {
		gen, ok := generated.Sections[cats[i]]
		if !ok {
			return nil
		}
		example, _ := exemplar.Section(cats[i])
		score, err := e.CompareSection(ctx, gen, example)
		if err != nil {
			return fmt.Errorf("section %s: %w", cats[i], err)
		}
		scores[i] = score
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &document.EvaluationResult{
		SectionScores: make(map[document.Category]float64, len(cats)),
		Order:         cats,
	}
	var sum float64
	for i, cat := range cats {
		res.SectionScores[cat] = scores[i]
		sum += scores[i]
	}
	res.OverallScore = sum / float64(len(cats))
	e.log.Info("evaluate.done", "sections", len(cats), "overall", res.OverallScore)
	return res, nil
}

// CompareSection makes one model call rating generated against example.
func (e *Evaluator) CompareSection(ctx context.Context, generated, example string) (float64, error) {
	reply, err := e.llm.Complete(ctx, BuildComparePrompt(example, generated))
	if err != nil {
		return 0, fmt.Errorf("compare section: %w", err)
	}
	return ParseScore(reply)
}

// BuildComparePrompt asks for a bare 1-10 rating.
func BuildComparePrompt(example, generated string) string {
	var sb strings.Builder
	sb.WriteString("Compare these two sections and rate the generated section on a scale of 1 to 10.\n")
	sb.WriteString("Here's the example section:\n")
	sb.WriteString(example)
	sb.WriteString("\n\nHere's the generated section:\n")
	sb.WriteString(generated)
	sb.WriteString("\n\nReturn only the score, nothing else.")
	return sb.String()
}

// ParseScore reads a numeric reply. Surrounding whitespace, a "Score:"
// prefix and a "/10" suffix are accepted. Scores are not clamped.
func ParseScore(reply string) (float64, error) {
	s := strings.TrimSpace(reply)
	if len(s) >= 6 && strings.EqualFold(s[:6], "score:") {
		s = s[6:]
	}
	s = strings.Trim(s, "*` \t\n")
	s = strings.TrimSpace(strings.TrimSuffix(s, "/10"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedScore, truncate(reply, 80))
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
