package section

import (
	"strings"
	"testing"

	"github.com/dgallion1/docbrief/internal/document"
)

func TestBuildClassifyPrompt_Text(t *testing.T) {
	p := BuildClassifyPrompt(document.DefaultCategories, "Port Harbor flooded twice.", false, "")
	for _, want := range []string{
		"- Water (floods, ports)",
		"- Fire (wildfires, fire stations)",
		"- Administrative (employees, establishments, admin support, etc.)",
		"- Other (anything else)",
		"Text: Port Harbor flooded twice.",
		"Return only the section name, nothing else.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "This is a table") {
		t.Error("text prompt should not carry the table flag")
	}
}

func TestBuildClassifyPrompt_TableUsesSummaryOnly(t *testing.T) {
	p := BuildClassifyPrompt(document.DefaultCategories, "Table with columns: Station, Trucks", true, "Lists fire stations and their trucks.")
	if !strings.Contains(p, "This is a table. Here's its summary:\nLists fire stations and their trucks.") {
		t.Errorf("expected table flag and summary:\n%s", p)
	}
	if strings.Contains(p, "Table with columns") {
		t.Error("table prompt should not include the chunk text")
	}
}

func TestBuildTableSummaryPrompt_SamplesRows(t *testing.T) {
	table := document.NewExtractedTable(document.RawTable{
		Headers: []string{"Name", "Dept"},
		Rows: [][]string{
			{"row-1", "a"}, {"row-2", "b"}, {"row-3", "c"}, {"row-4", "d"}, {"row-5", "e"},
		},
	})
	p, err := BuildTableSummaryPrompt(table, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p, "Table Headers: Name, Dept") {
		t.Errorf("missing headers line:\n%s", p)
	}
	for _, want := range []string{"row-1", "row-2", "row-3"} {
		if !strings.Contains(p, want) {
			t.Errorf("expected %s in prompt", want)
		}
	}
	for _, absent := range []string{"row-4", "row-5"} {
		if strings.Contains(p, absent) {
			t.Errorf("did not expect %s in prompt", absent)
		}
	}
	if !strings.Contains(p, "  {\n    \"Dept\": \"a\"") {
		t.Errorf("expected indented JSON rows:\n%s", p)
	}
}

func TestBuildTableSummaryPrompt_NoRows(t *testing.T) {
	table := document.NewExtractedTable(document.RawTable{Headers: []string{"Only"}})
	p, err := BuildTableSummaryPrompt(table, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p, "Example Rows:\n[]") {
		t.Errorf("expected empty JSON array:\n%s", p)
	}
}

func TestSourceMaterial(t *testing.T) {
	tables := []document.ExtractedTable{
		{Summary: "first"},
		{Summary: "Tracks fire trucks per station."},
	}
	chunks := []document.Chunk{
		document.TextChunk("Alpha."),
		document.TableChunk("Table with columns: Station", 1),
		document.TextChunk("Omega."),
	}
	got, err := SourceMaterial(chunks, tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Alpha. [Table 1: Tracks fire trucks per station.] Omega."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := SourceMaterial([]document.Chunk{document.TableChunk("x", 5)}, tables); err == nil {
		t.Error("expected error for out-of-range table index")
	}
}

func TestBuildSynthesisPrompt_EmptyExample(t *testing.T) {
	p := BuildSynthesisPrompt("", "Alpha.")
	if !strings.Contains(p, "look like:\n\n\nSource chunks:\nAlpha.") {
		t.Errorf("expected empty example block:\n%q", p)
	}
	if !strings.Contains(p, "incorporate the table information naturally") {
		t.Error("missing table guidance")
	}
}
