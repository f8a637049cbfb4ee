package report

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockListItem
	blockCode
)

// block is one output paragraph of a flattened narrative.
type block struct {
	kind   blockKind
	level  int // heading level or list depth
	marker string
	runs   []span
}

// span is a run of text with uniform emphasis.
type span struct {
	text   string
	bold   bool
	italic bool
}

func (b block) text() string {
	var sb strings.Builder
	sb.WriteString(b.marker)
	for _, s := range b.runs {
		sb.WriteString(s.text)
	}
	return strings.TrimSpace(sb.String())
}

var md = goldmark.New()

// flatten parses a narrative as markdown and returns its blocks in reading
// order. Nested lists become list items with a greater depth.
func flatten(narrative string) []block {
	src := []byte(narrative)
	root := md.Parser().Parse(text.NewReader(src))
	var out []block
	collectBlocks(root, src, 0, &out)
	return out
}

// plainText flattens a narrative to text, one block per line.
func plainText(narrative string) string {
	blocks := flatten(narrative)
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := b.text(); t != "" {
			lines = append(lines, b.indent()+t)
		}
	}
	return strings.Join(lines, "\n")
}

func (b block) indent() string {
	if b.kind != blockListItem || b.level < 2 {
		return ""
	}
	return strings.Repeat("  ", b.level-1)
}

func collectBlocks(n ast.Node, src []byte, depth int, out *[]block) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			*out = append(*out, block{kind: blockHeading, level: node.Level, runs: inlineSpans(node, src)})
		case *ast.Paragraph, *ast.TextBlock:
			*out = append(*out, block{kind: blockParagraph, runs: inlineSpans(node, src)})
		case *ast.List:
			collectList(node, src, depth+1, out)
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			*out = append(*out, block{kind: blockCode, runs: []span{{text: strings.TrimRight(blockLines(node, src), "\n")}}})
		case *ast.ThematicBreak:
		default:
			collectBlocks(node, src, depth, out)
		}
	}
}

func collectList(list *ast.List, src []byte, depth int, out *[]block) {
	num := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				b := block{kind: blockListItem, level: depth, runs: inlineSpans(node, src)}
				if first {
					b.marker = marker
					first = false
				}
				*out = append(*out, b)
			case *ast.List:
				collectList(node, src, depth+1, out)
			default:
				collectBlocks(node, src, depth, out)
			}
		}
	}
}

func inlineSpans(n ast.Node, src []byte) []span {
	var out []span
	walkInline(n, src, false, false, &out)
	return out
}

func walkInline(n ast.Node, src []byte, bold, italic bool, out *[]span) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			t := string(node.Value(src))
			if node.HardLineBreak() {
				t += "\n"
			} else if node.SoftLineBreak() {
				t += " "
			}
			appendSpan(out, span{text: t, bold: bold, italic: italic})
		case *ast.String:
			appendSpan(out, span{text: string(node.Value), bold: bold, italic: italic})
		case *ast.Emphasis:
			walkInline(node, src, bold || node.Level >= 2, italic || node.Level == 1, out)
		case *ast.AutoLink:
			appendSpan(out, span{text: string(node.URL(src)), bold: bold, italic: italic})
		case *ast.RawHTML:
		default:
			walkInline(node, src, bold, italic, out)
		}
	}
}

// appendSpan merges adjacent spans with the same emphasis.
func appendSpan(out *[]span, s span) {
	if s.text == "" {
		return
	}
	if n := len(*out); n > 0 && (*out)[n-1].bold == s.bold && (*out)[n-1].italic == s.italic {
		(*out)[n-1].text += s.text
		return
	}
	*out = append(*out, s)
}

func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}
