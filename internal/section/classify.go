package section

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/llm"
)

// Classifier assigns each chunk to one member of a closed category set.
type Classifier struct {
	llm    llm.Completer
	set    *document.CategorySet
	runner Runner
	log    *slog.Logger
}

func NewClassifier(c llm.Completer, set *document.CategorySet, runner Runner, log *slog.Logger) *Classifier {
	if set == nil {
		set = document.DefaultCategories
	}
	if runner == nil {
		runner = Sequential{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{llm: c, set: set, runner: runner, log: log}
}

// Classify makes one model call for chunk. Replies outside the set resolve
// to the set's fallback.
func (c *Classifier) Classify(ctx context.Context, chunk document.Chunk, tables []document.ExtractedTable) (document.Category, error) {
	var prompt string
	if chunk.IsTable {
		t, err := tableAt(tables, chunk.TableIndex)
		if err != nil {
			return "", err
		}
		prompt = BuildClassifyPrompt(c.set, "", true, t.Summary)
	} else {
		prompt = BuildClassifyPrompt(c.set, chunk.Text, false, "")
	}

	reply, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("classify chunk: %w", err)
	}
	reply = strings.TrimSpace(reply)
	cat, matched := c.set.Parse(reply)
	if !matched {
		c.log.Warn("section.classify.unrecognized",
			"reply", truncate(reply, 120),
			"fallback", cat,
			"is_table", chunk.IsTable,
		)
	}
	return cat, nil
}

// ClassifyAll classifies every chunk and groups them. Group order and order
// within a group follow chunk order.
func (c *Classifier) ClassifyAll(ctx context.Context, chunks []document.Chunk, tables []document.ExtractedTable) (*document.CategorizedChunks, error) {
	cats := make([]document.Category, len(chunks))
	err := c.runner.Run(ctx, len(chunks), func(ctx context.Context, i int) error {
		cat, err := c.Classify(ctx, chunks[i], tables)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		cats[i] = cat
		return nil
	})
	if err != nil {
		return nil, err
	}

	grouped := document.NewCategorizedChunks()
	for i, chunk := range chunks {
		grouped.Add(cats[i], chunk)
	}
	c.log.Debug("section.classify.done", "chunks", len(chunks), "categories", grouped.Len())
	return grouped, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
