package layout

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/dgallion1/docbrief/internal/document"
)

// addTable records a grid whose first row is the header. Cell text is also
// emitted as "table" paragraphs inside the table's span.
func (b *contentBuilder) addTable(res *Result, grid [][]string) {
	if len(grid) == 0 {
		return
	}
	start := b.offset()
	for _, row := range grid {
		for _, cell := range row {
			if cell != "" {
				res.Paragraphs = append(res.Paragraphs, document.RawParagraph{Text: cell, Role: "table", Span: b.write(cell)})
			}
		}
	}
	res.Tables = append(res.Tables, document.RawTable{
		Headers: grid[0],
		Rows:    grid[1:],
		Span:    document.ByteSpan{Start: start, End: b.offset()},
	})
}

func (b *contentBuilder) addParagraph(res *Result, text, role string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	res.Paragraphs = append(res.Paragraphs, document.RawParagraph{Text: text, Role: role, Span: b.write(text)})
}

// extractText splits plain text on blank lines.
func extractText(data []byte) (*Result, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	res := &Result{Pages: 1}
	var cb contentBuilder
	var current strings.Builder
	flush := func() {
		cb.addParagraph(res, current.String(), "")
		current.Reset()
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	flush()
	return res, nil
}

// extractCSV reads the whole file as one table.
func extractCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	res := &Result{Pages: 1}
	var cb contentBuilder
	cb.addTable(res, records)
	return res, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// extractMarkdown maps headings to "sectionHeading" paragraphs and GFM
// tables to tables.
func extractMarkdown(data []byte) (*Result, error) {
	root := markdown.Parser().Parse(text.NewReader(data))
	res := &Result{Pages: 1}
	var cb contentBuilder
	walkMarkdown(root, data, res, &cb)
	return res, nil
}

func walkMarkdown(n ast.Node, src []byte, res *Result, cb *contentBuilder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			cb.addParagraph(res, inlineText(node, src), "sectionHeading")
		case *ast.Paragraph, *ast.TextBlock:
			cb.addParagraph(res, inlineText(node, src), "")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			var buf strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			cb.addParagraph(res, buf.String(), "")
		case *extast.Table:
			cb.addTable(res, markdownGrid(node, src))
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			walkMarkdown(node, src, res, cb)
		}
	}
}

func markdownGrid(t *extast.Table, src []byte) [][]string {
	var grid [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, src))
		}
		grid = append(grid, cells)
	}
	return grid
}

// inlineText gets the text content of a goldmark node.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				buf.Write(node.Value(src))
				if node.HardLineBreak() || node.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(node.Value)
			case *ast.AutoLink:
				buf.Write(node.URL(src))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// extractHTML maps headings, paragraphs, list items and tables. Header and
// footer content keeps the page header/footer roles so it can be skipped.
func extractHTML(data []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	res := &Result{Pages: 1}
	var cb contentBuilder

	var walk func(n *html.Node, role string)
	walk = func(n *html.Node, role string) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "noscript", "template":
				return
			case "title":
				cb.addParagraph(res, textContent(n), "title")
				return
			case "header":
				role = "pageHeader"
			case "footer":
				role = "pageFooter"
			case "h1", "h2", "h3", "h4", "h5", "h6":
				r := role
				if r == "" {
					r = "sectionHeading"
				}
				cb.addParagraph(res, textContent(n), r)
				return
			case "p", "li", "blockquote", "dt", "dd", "pre", "figcaption":
				cb.addParagraph(res, textContent(n), role)
				return
			case "table":
				cb.addTable(res, htmlGrid(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, role)
		}
	}
	walk(doc, "")
	return res, nil
}

// htmlGrid collects th/td text row by row, skipping nested tables.
func htmlGrid(table *html.Node) [][]string {
	var grid [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				continue
			case "tr":
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, textContent(td))
					}
				}
				if len(cells) > 0 {
					grid = append(grid, cells)
				}
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return grid
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
