package section

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/llm"
)

// DefaultSampleRows is how many data rows accompany the header row in a
// summary prompt.
const DefaultSampleRows = 3

// ErrEmptySummary is returned when the model replies with nothing.
var ErrEmptySummary = errors.New("empty table summary")

// Summarizer writes a short description of each table.
type Summarizer struct {
	llm        llm.Completer
	runner     Runner
	sampleRows int
	log        *slog.Logger
}

func NewSummarizer(c llm.Completer, runner Runner, sampleRows int, log *slog.Logger) *Summarizer {
	if runner == nil {
		runner = Sequential{}
	}
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{llm: c, runner: runner, sampleRows: sampleRows, log: log}
}

// Summarize makes one model call for table and returns the trimmed reply.
func (s *Summarizer) Summarize(ctx context.Context, table document.ExtractedTable) (string, error) {
	prompt, err := BuildTableSummaryPrompt(table, s.sampleRows)
	if err != nil {
		return "", err
	}
	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize table: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptySummary
	}
	return reply, nil
}

// SummarizeAll converts raw tables and fills in each Summary. Any failure
// fails the whole batch.
func (s *Summarizer) SummarizeAll(ctx context.Context, raw []document.RawTable) ([]document.ExtractedTable, error) {
	tables := make([]document.ExtractedTable, len(raw))
	for i, r := range raw {
		tables[i] = document.NewExtractedTable(r)
	}
	err := s.runner.Run(ctx, len(tables), func(ctx context.Context, i int) error {
		summary, err := s.Summarize(ctx, tables[i])
		if err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
		tables[i].Summary = summary
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("section.summarize.done", "tables", len(tables))
	return tables, nil
}
