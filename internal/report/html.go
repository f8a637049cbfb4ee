package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/docbrief/internal/document"
)

// HTML writes a standalone page. Narratives go through goldmark with raw
// HTML disabled; everything else is built as a node tree so text is escaped
// by html.Render.
func HTML(w io.Writer, doc *document.GeneratedDocument, meta Meta) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	htmlEl := element(atom.Html)
	root.AppendChild(htmlEl)

	head := element(atom.Head)
	charset := element(atom.Meta)
	charset.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(charset)
	head.AppendChild(textElement(atom.Title, "Document Summary"))
	htmlEl.AppendChild(head)

	body := element(atom.Body)
	htmlEl.AppendChild(body)
	body.AppendChild(textElement(atom.H1, "Document Summary"))
	body.AppendChild(textElement(atom.P, "Summary Type: "+meta.SummaryType))
	body.AppendChild(textElement(atom.H2, "Document: "+meta.Filename))
	body.AppendChild(textElement(atom.P, "Type: "+meta.DocType))

	for _, cat := range doc.OrderedCategories() {
		sec := element(atom.Section)
		sec.Attr = []html.Attribute{{Key: "id", Val: "section-" + string(cat)}}
		sec.AppendChild(textElement(atom.H2, string(cat)))
		nodes, err := renderMarkdown(doc.Sections[cat])
		if err != nil {
			return fmt.Errorf("render section %s: %w", cat, err)
		}
		for _, n := range nodes {
			sec.AppendChild(n)
		}
		body.AppendChild(sec)
	}

	if len(doc.Tables) > 0 {
		body.AppendChild(textElement(atom.H2, "Extracted Tables"))
		for i, t := range doc.Tables {
			body.AppendChild(textElement(atom.H3, "Table "+strconv.Itoa(i+1)))
			if t.Summary != "" {
				body.AppendChild(textElement(atom.P, t.Summary))
			}
			body.AppendChild(tableNode(t))
		}
	}

	if ev := meta.Evaluation; ev != nil {
		body.AppendChild(textElement(atom.H2, "Evaluation"))
		ul := element(atom.Ul)
		for _, cat := range ev.Order {
			ul.AppendChild(textElement(atom.Li, fmt.Sprintf("%s: %.2f", cat, ev.SectionScores[cat])))
		}
		ul.AppendChild(textElement(atom.Li, fmt.Sprintf("Overall: %.2f", ev.OverallScore)))
		body.AppendChild(ul)
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// renderMarkdown converts a narrative with goldmark and parses the result
// back into detached nodes.
func renderMarkdown(narrative string) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(narrative), &buf); err != nil {
		return nil, err
	}
	return html.ParseFragment(&buf, element(atom.Div))
}

func tableNode(t document.ExtractedTable) *html.Node {
	table := element(atom.Table)
	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, h := range t.Headers {
		tr.AppendChild(textElement(atom.Th, h))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for _, h := range t.Headers {
			tr.AppendChild(textElement(atom.Td, row[h]))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textElement(a atom.Atom, text string) *html.Node {
	n := element(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
