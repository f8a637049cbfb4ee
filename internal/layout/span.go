package layout

import "github.com/dgallion1/docbrief/internal/document"

// IsContainedInAnyTable reports whether a paragraph starts or ends inside any
// of the given table spans. A paragraph straddling a table boundary counts as
// table content.
func IsContainedInAnyTable(p document.ByteSpan, tables []document.ByteSpan) bool {
	for _, t := range tables {
		if t.Start <= p.Start && p.Start < t.End {
			return true
		}
		if t.Start < p.End && p.End <= t.End {
			return true
		}
	}
	return false
}

// TableSpans returns the spans of tables that have at least one cell.
func TableSpans(tables []document.RawTable) []document.ByteSpan {
	spans := make([]document.ByteSpan, 0, len(tables))
	for _, t := range tables {
		if !hasCells(t) {
			continue
		}
		spans = append(spans, t.Span)
	}
	return spans
}

// FilterParagraphs drops paragraphs that overlap a table, keeping document
// order for the rest.
func FilterParagraphs(paragraphs []document.RawParagraph, tables []document.RawTable) []document.RawParagraph {
	spans := TableSpans(tables)
	kept := make([]document.RawParagraph, 0, len(paragraphs))
	for _, p := range paragraphs {
		if IsContainedInAnyTable(p.Span, spans) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// NonEmptyTables returns tables with at least one cell, in order.
func NonEmptyTables(tables []document.RawTable) []document.RawTable {
	out := make([]document.RawTable, 0, len(tables))
	for _, t := range tables {
		if hasCells(t) {
			out = append(out, t)
		}
	}
	return out
}

func hasCells(t document.RawTable) bool {
	return len(t.Headers) > 0 || len(t.Rows) > 0
}
