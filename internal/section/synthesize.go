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

// ErrEmptyNarrative is returned when the model replies with nothing for a
// populated category.
var ErrEmptyNarrative = errors.New("empty section narrative")

// Synthesizer writes one narrative per populated category.
type Synthesizer struct {
	llm    llm.Completer
	runner Runner
	log    *slog.Logger
}

func NewSynthesizer(c llm.Completer, runner Runner, log *slog.Logger) *Synthesizer {
	if runner == nil {
		runner = Sequential{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{llm: c, runner: runner, log: log}
}

// Synthesize makes one model call for a category's chunks. An empty example
// leaves the example block empty.
func (s *Synthesizer) Synthesize(ctx context.Context, chunks []document.Chunk, example string, tables []document.ExtractedTable) (string, error) {
	source, err := SourceMaterial(chunks, tables)
	if err != nil {
		return "", err
	}
	reply, err := s.llm.Complete(ctx, BuildSynthesisPrompt(example, source))
	if err != nil {
		return "", fmt.Errorf("synthesize section: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyNarrative
	}
	return reply, nil
}

// SynthesizeAll produces a section for every populated category in grouped,
// in grouped's category order. exemplar may be nil.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, grouped *document.CategorizedChunks, exemplar *document.ExemplarDocument, tables []document.ExtractedTable) (*document.GeneratedDocument, error) {
	cats := grouped.Categories()
	texts := make([]string, len(cats))
	err := s.runner.Run(ctx, len(cats), func(ctx context.Context, i int) error {
		example, _ := exemplar.Section(cats[i])
		text, err := s.Synthesize(ctx, grouped.Chunks(cats[i]), example, tables)
		if err != nil {
			return fmt.Errorf("section %s: %w", cats[i], err)
		}
		texts[i] = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc := document.NewGeneratedDocument()
	for i, cat := range cats {
		doc.AddSection(cat, texts[i])
	}
	if tables != nil {
		doc.Tables = tables
	}
	s.log.Debug("section.synthesize.done", "sections", len(cats))
	return doc, nil
}
