package layout

import (
	"context"
	"errors"

	"github.com/dgallion1/docbrief/internal/document"
)

// Result is the raw layout of one document.
type Result struct {
	Paragraphs []document.RawParagraph
	Tables     []document.RawTable
	Pages      int
}

// Extractor turns document bytes into paragraphs and tables with byte spans.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*Result, error)
}

// ErrUnsupportedFormat is returned for inputs an extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")
