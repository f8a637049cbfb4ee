package layout

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docbrief/internal/document"
)

// LocalExtractor reads layout without the analysis service. PDF and plain
// text yield paragraphs only; DOCX, Markdown, HTML and CSV yield tables too. Spans are byte
// offsets into the text as it is emitted, so cell text inside a table span
// is filtered exactly like service output.
type LocalExtractor struct {
	log *slog.Logger
}

func NewLocalExtractor(log *slog.Logger) *LocalExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &LocalExtractor{log: log}
}

func (e *LocalExtractor) Extract(ctx context.Context, data []byte, filename string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		res *Result
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf", "":
		res, err = extractPDF(data)
	case ".docx":
		res, err = extractDOCX(data)
	case ".txt":
		res, err = extractText(data)
	case ".csv":
		res, err = extractCSV(data)
	case ".md", ".markdown":
		res, err = extractMarkdown(data)
	case ".html", ".htm":
		res, err = extractHTML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	e.log.Info("layout.local.ok", "doc", filename, "paragraphs", len(res.Paragraphs), "tables", len(res.Tables))
	return res, nil
}

// contentBuilder accumulates emitted text and hands out spans.
type contentBuilder struct {
	buf bytes.Buffer
}

func (b *contentBuilder) offset() int {
	return b.buf.Len()
}

// write appends text plus a separator and returns the text's span.
func (b *contentBuilder) write(text string) document.ByteSpan {
	start := b.buf.Len()
	b.buf.WriteString(text)
	end := b.buf.Len()
	b.buf.WriteByte('\n')
	return document.ByteSpan{Start: start, End: end}
}

func extractPDF(data []byte) (*Result, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	res := &Result{Pages: reader.NumPage()}
	var cb contentBuilder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, block := range splitBlocks(text) {
			res.Paragraphs = append(res.Paragraphs, document.RawParagraph{
				Text: block,
				Span: cb.write(block),
			})
		}
	}
	return res, nil
}

// splitBlocks splits page text on blank lines, dropping empty blocks.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, b := range strings.Split(text, "\n\n") {
		b = strings.TrimSpace(b)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func extractDOCX(data []byte) (*Result, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	res := &Result{Pages: 1}
	var cb contentBuilder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			res.Paragraphs = append(res.Paragraphs, document.RawParagraph{
				Text: text,
				Role: docxRole(it),
				Span: cb.write(text),
			})
		case *docx.Table:
			start := cb.offset()
			var grid [][]string
			for _, row := range it.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					var parts []string
					for _, p := range cell.Paragraphs {
						if t := docxParagraphText(p); t != "" {
							parts = append(parts, t)
						}
					}
					text := strings.Join(parts, " ")
					cells = append(cells, text)
					if text != "" {
						// Cell text shows up as paragraphs too, as it does
						// in service output.
						res.Paragraphs = append(res.Paragraphs, document.RawParagraph{
							Text: text,
							Role: "table",
							Span: cb.write(text),
						})
					}
				}
				grid = append(grid, cells)
			}
			if len(grid) == 0 {
				continue
			}
			res.Tables = append(res.Tables, document.RawTable{
				Headers: grid[0],
				Rows:    grid[1:],
				Span:    document.ByteSpan{Start: start, End: cb.offset()},
			})
		}
	}
	return res, nil
}

func docxRole(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	switch {
	case style == "title":
		return "title"
	case strings.HasPrefix(style, "heading"):
		return "sectionHeading"
	}
	return ""
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
