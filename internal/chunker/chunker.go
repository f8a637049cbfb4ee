package chunker

import (
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
)

// Config controls chunk building.
type Config struct {
	MaxTokens int      // Split paragraphs above this size by sentence; 0 keeps every paragraph whole.
	SkipRoles []string // Paragraph roles to drop, e.g. "pageHeader", "pageFooter".
}

// DefaultConfig keeps one chunk per paragraph.
func DefaultConfig() Config {
	return Config{}
}

// Build turns filtered paragraphs and summarized tables into classifiable
// chunks: text chunks in paragraph order, then one chunk per table.
func Build(paragraphs []document.RawParagraph, tables []document.ExtractedTable, cfg Config) []document.Chunk {
	skip := make(map[string]bool, len(cfg.SkipRoles))
	for _, r := range cfg.SkipRoles {
		skip[strings.ToLower(strings.TrimSpace(r))] = true
	}

	chunks := make([]document.Chunk, 0, len(paragraphs)+len(tables))
	for _, p := range paragraphs {
		if skip[strings.ToLower(p.Role)] {
			continue
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if cfg.MaxTokens > 0 && EstimateTokens(text) > cfg.MaxTokens {
			for _, part := range splitBySentences(text, cfg.MaxTokens) {
				chunks = append(chunks, document.TextChunk(part))
			}
			continue
		}
		chunks = append(chunks, document.TextChunk(text))
	}
	for i, t := range tables {
		chunks = append(chunks, document.TableChunk(TableText(t.Headers), i))
	}
	return chunks
}

// TableText is the stand-in text for a table chunk.
func TableText(headers []string) string {
	return "Table with columns: " + strings.Join(headers, ", ")
}

// splitBySentences breaks a large paragraph into sentence-based chunks of
// at most targetTokens each. A single oversized sentence stays whole.
func splitBySentences(text string, targetTokens int) []string {
	var result []string
	current := ""

	for _, sent := range splitSentences(text) {
		if current == "" {
			current = sent
			continue
		}
		candidate := current + " " + sent
		if EstimateTokens(candidate) > targetTokens {
			result = append(result, current)
			current = sent
			continue
		}
		current = candidate
	}
	if current != "" {
		result = append(result, current)
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
