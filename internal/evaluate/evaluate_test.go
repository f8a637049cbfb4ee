package evaluate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/section"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu      sync.Mutex
	prompts []string
}

func (r *recorder) completer(reply func(prompt string) (string, error)) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		r.mu.Lock()
		r.prompts = append(r.prompts, prompt)
		r.mu.Unlock()
		return reply(prompt)
	})
}

func exemplar(sections map[document.Category]string) *document.ExemplarDocument {
	return &document.ExemplarDocument{Sections: sections}
}

func TestCompare_MissingSectionsScoreZero(t *testing.T) {
	rec := &recorder{}
	c := rec.completer(func(p string) (string, error) {
		if strings.Contains(p, "generated admin") {
			return "6", nil
		}
		return "7.0", nil
	})
	ev := NewEvaluator(c, nil, quietLogger())

	gen := document.NewGeneratedDocument()
	gen.AddSection(document.Administrative, "generated admin")
	gen.AddSection(document.Other, "generated other")
	ex := exemplar(map[document.Category]string{
		document.Water:          "w",
		document.Fire:           "f",
		document.Administrative: "a",
		document.Other:          "o",
	})

	res, err := ev.Compare(context.Background(), gen, ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[document.Category]float64{
		document.Water: 0, document.Fire: 0, document.Administrative: 6, document.Other: 7,
	}
	for cat, score := range want {
		if res.SectionScores[cat] != score {
			t.Errorf("%s: expected %v, got %v", cat, score, res.SectionScores[cat])
		}
	}
	if res.OverallScore != 3.25 {
		t.Errorf("expected overall 3.25, got %v", res.OverallScore)
	}
	if len(rec.prompts) != 2 {
		t.Errorf("expected 2 model calls, got %d", len(rec.prompts))
	}
	if len(res.Order) != 4 || res.Order[0] != document.Water {
		t.Errorf("expected default category order, got %v", res.Order)
	}
}

func TestCompare_ExtraGeneratedSectionsIgnored(t *testing.T) {
	rec := &recorder{}
	ev := NewEvaluator(rec.completer(func(string) (string, error) { return "8", nil }), section.Bounded{Limit: 2}, quietLogger())

	gen := document.NewGeneratedDocument()
	gen.AddSection(document.Water, "w")
	gen.AddSection(document.Fire, "f")
	res, err := ev.Compare(context.Background(), gen, exemplar(map[document.Category]string{document.Water: "ex"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.SectionScores) != 1 || res.OverallScore != 8 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCompare_EmptyExemplar(t *testing.T) {
	rec := &recorder{}
	ev := NewEvaluator(rec.completer(func(string) (string, error) { return "5", nil }), nil, quietLogger())
	for _, ex := range []*document.ExemplarDocument{nil, exemplar(nil), exemplar(map[document.Category]string{})} {
		if _, err := ev.Compare(context.Background(), document.NewGeneratedDocument(), ex); !errors.Is(err, ErrEmptyExemplar) {
			t.Errorf("expected ErrEmptyExemplar, got %v", err)
		}
	}
	if len(rec.prompts) != 0 {
		t.Error("expected no model calls")
	}
}

func TestCompare_MalformedScorePropagates(t *testing.T) {
	rec := &recorder{}
	ev := NewEvaluator(rec.completer(func(string) (string, error) { return "pretty good", nil }), nil, quietLogger())
	gen := document.NewGeneratedDocument()
	gen.AddSection(document.Fire, "f")

	_, err := ev.Compare(context.Background(), gen, exemplar(map[document.Category]string{document.Fire: "x"}))
	if !errors.Is(err, ErrMalformedScore) {
		t.Fatalf("expected ErrMalformedScore, got %v", err)
	}
}

func TestCompare_PromptCarriesBothNarratives(t *testing.T) {
	rec := &recorder{}
	ev := NewEvaluator(rec.completer(func(string) (string, error) { return "5", nil }), nil, quietLogger())
	gen := document.NewGeneratedDocument()
	gen.AddSection(document.Water, "GENERATED-TEXT")
	if _, err := ev.Compare(context.Background(), gen, exemplar(map[document.Category]string{document.Water: "EXAMPLE-TEXT"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := rec.prompts[0]
	if strings.Index(p, "EXAMPLE-TEXT") > strings.Index(p, "GENERATED-TEXT") {
		t.Error("expected example before generated section")
	}
	if !strings.HasSuffix(p, "Return only the score, nothing else.") {
		t.Error("missing reply instruction")
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"7", 7, false},
		{" 8.5\n", 8.5, false},
		{"Score: 6", 6, false},
		{"score:9/10", 9, false},
		{"7/10", 7, false},
		{"**4**", 4, false},
		{"11", 11, false},
		{"-2", -2, false},
		{"", 0, true},
		{"seven", 0, true},
		{"7 out of 10", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseScore(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrMalformedScore) {
				t.Errorf("ParseScore(%q): expected ErrMalformedScore, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseScore(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseScore(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
