package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/layout"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubExtractor struct {
	res   *layout.Result
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, filename string) (*layout.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

// scriptedLLM gives deterministic replies keyed on the prompt kind.
type scriptedLLM struct {
	mu          sync.Mutex
	prompts     []string
	failSummary bool
}

var errSummaryDown = errors.New("summary model unavailable")

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	switch {
	case strings.HasPrefix(prompt, "Analyze this table"):
		if s.failSummary {
			return "", errSummaryDown
		}
		return "Staff roster listing employees by department.", nil
	case strings.HasPrefix(prompt, "Which section"):
		payload := prompt[strings.Index(prompt, "- Other (anything else)"):]
		switch {
		case strings.Contains(payload, "wildfire"):
			return "Fire", nil
		case strings.Contains(payload, "flood"):
			return "Water", nil
		case strings.Contains(payload, "employees"):
			return "Administrative", nil
		}
		return "Other", nil
	case strings.HasPrefix(prompt, "Generate a section"):
		src := prompt[strings.Index(prompt, "Source chunks:\n")+len("Source chunks:\n"):]
		src = src[:strings.Index(src, "\n\n")]
		return "Narrative about " + src, nil
	case strings.HasPrefix(prompt, "Compare these two sections"):
		return "7", nil
	}
	return "", errors.New("unexpected prompt")
}

func (s *scriptedLLM) count(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

// twoParagraphsOneTable has a wildfire paragraph, a flood paragraph, a cell
// paragraph inside the table span, and one staff table.
func twoParagraphsOneTable() *layout.Result {
	return &layout.Result{
		Pages: 1,
		Paragraphs: []document.RawParagraph{
			{Text: "Crews contained the wildfire near the western stations.", Span: document.ByteSpan{Start: 0, End: 55}},
			{Text: "Employee", Role: "table", Span: document.ByteSpan{Start: 60, End: 68}},
			{Text: "The spring flood damaged two port terminals.", Span: document.ByteSpan{Start: 120, End: 165}},
		},
		Tables: []document.RawTable{{
			Headers: []string{"Employee", "Department"},
			Rows:    [][]string{{"Ada", "Finance"}, {"Lin", "Fire"}},
			Span:    document.ByteSpan{Start: 58, End: 110},
		}},
	}
}
