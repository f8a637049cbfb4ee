package section

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
)

const classifyIntro = "Which section does the following text belong to? Options are:"

const classifySuffix = "Return only the section name, nothing else."

// BuildClassifyPrompt asks for exactly one member of set. Table chunks are
// described by their summary only.
func BuildClassifyPrompt(set *document.CategorySet, text string, isTable bool, tableSummary string) string {
	var sb strings.Builder
	sb.WriteString(classifyIntro)
	sb.WriteString("\n")
	for _, m := range set.Members() {
		if m.Description != "" {
			fmt.Fprintf(&sb, "- %s (%s)\n", m.Name, m.Description)
		} else {
			fmt.Fprintf(&sb, "- %s\n", m.Name)
		}
	}
	if isTable {
		sb.WriteString("This is a table. Here's its summary:\n")
		sb.WriteString(tableSummary)
	} else {
		sb.WriteString("\nText: ")
		sb.WriteString(text)
	}
	sb.WriteString("\n\n")
	sb.WriteString(classifySuffix)
	return sb.String()
}

// BuildTableSummaryPrompt shows the header row and the sample rows as
// indented JSON.
func BuildTableSummaryPrompt(table document.ExtractedTable, sampleRows int) (string, error) {
	rows := table.SampleRows(sampleRows)
	if rows == nil {
		rows = []map[string]string{}
	}
	example, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal example rows: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Analyze this table and provide a brief summary of its purpose and content.\n\n")
	sb.WriteString("Table Headers: ")
	sb.WriteString(strings.Join(table.Headers, ", "))
	sb.WriteString("\nExample Rows:\n")
	sb.Write(example)
	sb.WriteString("\n\nProvide a concise summary (2-3 sentences) that explains:\n")
	sb.WriteString("1. What this table appears to be tracking or documenting\n")
	sb.WriteString("2. What key information the columns contain\n")
	return sb.String(), nil
}

// BuildSynthesisPrompt asks for one narrative in the style of example.
func BuildSynthesisPrompt(example, sourceMaterial string) string {
	var sb strings.Builder
	sb.WriteString("Generate a section using these text chunks as source material.\n")
	sb.WriteString("Here's an example of what the section should look like:\n")
	sb.WriteString(example)
	sb.WriteString("\n\nSource chunks:\n")
	sb.WriteString(sourceMaterial)
	sb.WriteString("\n\nWhen referring to tables, incorporate the table information naturally into the narrative.")
	return sb.String()
}

// SourceMaterial joins a category's chunks with single spaces. Table chunks
// become "[Table i: summary]" tags.
func SourceMaterial(chunks []document.Chunk, tables []document.ExtractedTable) (string, error) {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if !c.IsTable {
			parts = append(parts, c.Text)
			continue
		}
		t, err := tableAt(tables, c.TableIndex)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("[Table %d: %s]", c.TableIndex, t.Summary))
	}
	return strings.Join(parts, " "), nil
}

func tableAt(tables []document.ExtractedTable, i int) (document.ExtractedTable, error) {
	if i < 0 || i >= len(tables) {
		return document.ExtractedTable{}, fmt.Errorf("table chunk references table %d of %d", i, len(tables))
	}
	return tables[i], nil
}
