package document

import "strings"

// ByteSpan is a half-open byte-offset interval [Start, End) within the
// source document's extracted content.
type ByteSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpanFromOffset builds a span from the offset/length pair reported by the
// layout service.
func SpanFromOffset(offset, length int) ByteSpan {
	return ByteSpan{Start: offset, End: offset + length}
}

// Valid reports whether Start <= End.
func (s ByteSpan) Valid() bool {
	return s.Start <= s.End
}

// RawParagraph is a paragraph as reported by the layout extractor.
type RawParagraph struct {
	Text string   // Paragraph content
	Role string   // Layout role, e.g. "title", "sectionHeading" (empty for body text)
	Span ByteSpan // Location in the extracted content
}

// RawTable is a table as reported by the layout extractor. Rows are aligned
// to Headers.
type RawTable struct {
	Headers []string
	Rows    [][]string
	Span    ByteSpan
}

// ExtractedTable is a table exposed to the classification and synthesis
// stages. Summary is filled in before the table is used by either stage.
type ExtractedTable struct {
	Headers     []string            `json:"headers"`
	Rows        []map[string]string `json:"rows"`
	Summary     string              `json:"summary"`
	Description string              `json:"description,omitempty"`
}

// NewExtractedTable converts a raw table into keyed rows. Cells are trimmed.
// A row shorter than the header leaves the remaining columns out; extra
// cells are dropped.
func NewExtractedTable(raw RawTable) ExtractedTable {
	headers := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([]map[string]string, 0, len(raw.Rows))
	for _, cells := range raw.Rows {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i >= len(cells) {
				break
			}
			row[h] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, row)
	}
	return ExtractedTable{Headers: headers, Rows: rows}
}

// SampleRows returns at most the first n rows.
func (t ExtractedTable) SampleRows(n int) []map[string]string {
	if n < 0 {
		n = 0
	}
	if len(t.Rows) <= n {
		return t.Rows
	}
	return t.Rows[:n]
}

// Chunk is one classifiable unit of content: free text or a table reference.
type Chunk struct {
	Text       string `json:"text"`
	IsTable    bool   `json:"is_table"`
	TableIndex int    `json:"table_index,omitempty"` // Only meaningful when IsTable
}

// TextChunk returns a free-text chunk.
func TextChunk(text string) Chunk {
	return Chunk{Text: text}
}

// TableChunk returns a chunk that stands in for tables[index].
func TableChunk(text string, index int) Chunk {
	return Chunk{Text: text, IsTable: true, TableIndex: index}
}
