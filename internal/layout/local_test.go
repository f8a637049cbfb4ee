package layout

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Flood response overview")
	tbl := w.AddTable(2, 2, 0, nil)
	cells := [][]string{{"Station", "Trucks"}, {"West", "5"}}
	for r, row := range tbl.TableRows {
		for c, cell := range row.TableCells {
			cell.AddParagraph().AddText(cells[r][c])
		}
	}
	w.AddParagraph().AddText("Closing remarks")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestLocalExtractor_DOCXTablesAndSpans(t *testing.T) {
	e := NewLocalExtractor(quietLogger())
	res, err := e.Extract(context.Background(), buildDOCX(t), "sample.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(res.Tables))
	}
	tbl := res.Tables[0]
	if len(tbl.Headers) != 2 || tbl.Headers[0] != "Station" {
		t.Errorf("expected headers [Station Trucks], got %v", tbl.Headers)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "5" {
		t.Errorf("expected one data row, got %v", tbl.Rows)
	}

	// Two body paragraphs plus four cell paragraphs.
	if len(res.Paragraphs) != 6 {
		t.Fatalf("expected 6 paragraphs, got %d", len(res.Paragraphs))
	}
	kept := FilterParagraphs(res.Paragraphs, res.Tables)
	if len(kept) != 2 {
		t.Fatalf("expected cell paragraphs to be filtered, got %d kept", len(kept))
	}
	if kept[0].Text != "Flood response overview" || kept[1].Text != "Closing remarks" {
		t.Errorf("unexpected kept paragraphs: %+v", kept)
	}
}

func TestLocalExtractor_UnsupportedExtension(t *testing.T) {
	e := NewLocalExtractor(quietLogger())
	if _, err := e.Extract(context.Background(), []byte("x"), "slides.pptx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLocalExtractor_InvalidPDF(t *testing.T) {
	e := NewLocalExtractor(quietLogger())
	if _, err := e.Extract(context.Background(), []byte("not a pdf"), "broken.pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}

func TestSplitBlocks(t *testing.T) {
	got := splitBlocks("First block\nline two\r\n\r\n\n\nSecond block\n\n   \n")
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(got), got)
	}
	if got[0] != "First block\nline two" {
		t.Errorf("unexpected first block %q", got[0])
	}
}
