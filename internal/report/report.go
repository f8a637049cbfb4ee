// Package report renders generated summaries as DOCX, XLSX, HTML or JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docbrief/internal/document"
)

// Format is an output artifact type.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// Meta describes the run that produced a document.
type Meta struct {
	Filename    string                     `json:"filename"`
	DocType     string                     `json:"type,omitempty"`
	SummaryType string                     `json:"summary_type,omitempty"`
	Evaluation  *document.EvaluationResult `json:"evaluation,omitempty"`
}

// ParseFormat accepts a format name or file extension. Empty means DOCX.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case "":
		return FormatDOCX, nil
	case FormatDOCX, FormatXLSX, FormatHTML, FormatJSON:
		return f, nil
	case "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Filename returns the attachment name for f.
func (f Format) Filename() string {
	return "generated_summary." + string(f)
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc *document.GeneratedDocument, meta Meta) error {
	if doc == nil {
		return fmt.Errorf("no document to render")
	}
	switch f {
	case FormatDOCX:
		return DOCX(w, doc, meta)
	case FormatXLSX:
		return XLSX(w, doc)
	case FormatHTML:
		return HTML(w, doc, meta)
	case FormatJSON:
		return JSON(w, doc, meta)
	}
	return fmt.Errorf("unsupported report format %q", f)
}
