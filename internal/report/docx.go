package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docbrief/internal/document"
)

// Run sizes in half-points.
const (
	sizeTitle    = "40"
	sizeHeading1 = "32"
	sizeHeading2 = "28"
	sizeHeading3 = "24"
)

// DOCX writes the summary as a Word document: title block, one heading per
// section, then every extracted table as a grid.
func DOCX(w io.Writer, doc *document.GeneratedDocument, meta Meta) error {
	f := docx.New().WithDefaultTheme()

	heading(f, "Document Summary", sizeTitle)
	f.AddParagraph().AddText("Summary Type: " + meta.SummaryType)
	heading(f, "Document: "+meta.Filename, sizeHeading1)
	f.AddParagraph().AddText("Type: " + meta.DocType)

	for _, cat := range doc.OrderedCategories() {
		heading(f, string(cat), sizeHeading2)
		writeNarrative(f, doc.Sections[cat])
	}

	if len(doc.Tables) > 0 {
		heading(f, "Extracted Tables", sizeHeading2)
		for i, t := range doc.Tables {
			heading(f, "Table "+strconv.Itoa(i+1), sizeHeading3)
			if t.Summary != "" {
				f.AddParagraph().AddText(t.Summary).Italic()
			}
			writeTable(f, t)
		}
	}

	if ev := meta.Evaluation; ev != nil {
		heading(f, "Evaluation", sizeHeading2)
		for _, cat := range ev.Order {
			f.AddParagraph().AddText(fmt.Sprintf("%s: %.2f", cat, ev.SectionScores[cat]))
		}
		f.AddParagraph().AddText(fmt.Sprintf("Overall: %.2f", ev.OverallScore)).Bold()
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func heading(f *docx.Docx, text, size string) {
	f.AddParagraph().AddText(text).Bold().Size(size)
}

func writeNarrative(f *docx.Docx, narrative string) {
	for _, b := range flatten(narrative) {
		p := f.AddParagraph()
		switch b.kind {
		case blockHeading:
			p.AddText(b.text()).Bold().Size(sizeHeading3)
			continue
		case blockListItem:
			if ind := b.indent(); ind != "" || b.marker != "" {
				addText(p, ind+b.marker)
			}
		case blockCode:
			p.AddText(b.text()).Font("Courier New", "Courier New", "Courier New", "default")
			continue
		}
		for _, s := range b.runs {
			r := addText(p, s.text)
			if s.bold {
				r.Bold()
			}
			if s.italic {
				r.Italic()
			}
		}
	}
}

func writeTable(f *docx.Docx, t document.ExtractedTable) {
	if len(t.Headers) == 0 {
		return
	}
	tbl := f.AddTable(len(t.Rows)+1, len(t.Headers), 0, nil)
	for j, h := range t.Headers {
		tbl.TableRows[0].TableCells[j].AddParagraph().AddText(h).Bold()
	}
	for i, row := range t.Rows {
		for j, h := range t.Headers {
			tbl.TableRows[i+1].TableCells[j].AddParagraph().AddText(row[h])
		}
	}
}

// addText keeps leading and trailing spaces, which Word drops by default.
func addText(p *docx.Paragraph, text string) *docx.Run {
	r := p.AddText(text)
	for _, c := range r.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return r
}
