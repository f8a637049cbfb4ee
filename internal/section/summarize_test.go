package section

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docbrief/internal/document"
)

func TestSummarizeAll_FillsSummaries(t *testing.T) {
	f := &fakeLLM{reply: func(p string) (string, error) {
		if strings.Contains(p, "Station") {
			return "  Lists stations.\n", nil
		}
		return "Lists staff.", nil
	}}
	s := NewSummarizer(f, Sequential{}, 0, quietLogger())

	tables, err := s.SummarizeAll(context.Background(), []document.RawTable{
		{Headers: []string{"Station", "Trucks"}, Rows: [][]string{{"West", "5"}}},
		{Headers: []string{"Employee"}, Rows: [][]string{{"Ada"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables) != 2 || f.calls() != 2 {
		t.Fatalf("expected 2 tables and 2 calls, got %d and %d", len(tables), f.calls())
	}
	if tables[0].Summary != "Lists stations." || tables[1].Summary != "Lists staff." {
		t.Errorf("unexpected summaries: %q, %q", tables[0].Summary, tables[1].Summary)
	}
	if tables[0].Rows[0]["Trucks"] != "5" {
		t.Errorf("expected keyed rows, got %v", tables[0].Rows)
	}
}

func TestSummarize_UsesDefaultSampleBound(t *testing.T) {
	f := &fakeLLM{reply: func(string) (string, error) { return "ok", nil }}
	s := NewSummarizer(f, nil, 0, quietLogger())
	table := document.NewExtractedTable(document.RawTable{
		Headers: []string{"N"},
		Rows:    [][]string{{"r1"}, {"r2"}, {"r3"}, {"r4"}},
	})
	if _, err := s.Summarize(context.Background(), table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(f.prompts[0], "r4") {
		t.Error("fourth row should not be sent")
	}
}

func TestSummarizeAll_FailurePropagates(t *testing.T) {
	boom := errors.New("rate limited")
	f := &fakeLLM{reply: func(string) (string, error) { return "", boom }}
	s := NewSummarizer(f, Bounded{Limit: 2}, 3, quietLogger())

	tables, err := s.SummarizeAll(context.Background(), []document.RawTable{{Headers: []string{"A"}}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
	if tables != nil {
		t.Error("expected no tables on failure")
	}
}

func TestSummarize_EmptyReply(t *testing.T) {
	f := &fakeLLM{reply: func(string) (string, error) { return "  \n", nil }}
	s := NewSummarizer(f, nil, 3, quietLogger())
	_, err := s.Summarize(context.Background(), document.ExtractedTable{Headers: []string{"A"}})
	if !errors.Is(err, ErrEmptySummary) {
		t.Fatalf("expected ErrEmptySummary, got %v", err)
	}
}

func TestSummarizeAll_NoTables(t *testing.T) {
	f := &fakeLLM{reply: func(string) (string, error) { return "x", nil }}
	s := NewSummarizer(f, nil, 3, quietLogger())
	tables, err := s.SummarizeAll(context.Background(), nil)
	if err != nil || len(tables) != 0 || f.calls() != 0 {
		t.Fatalf("expected no calls and no tables, got %v %v %d", tables, err, f.calls())
	}
}
