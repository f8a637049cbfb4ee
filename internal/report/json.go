package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docbrief/internal/document"
)

type jsonSection struct {
	Category  document.Category `json:"category"`
	Narrative string            `json:"narrative"`
}

type jsonReport struct {
	Meta
	Sections []jsonSection             `json:"sections"`
	Tables   []document.ExtractedTable `json:"tables"`
}

// JSON writes the summary with sections as an ordered list.
func JSON(w io.Writer, doc *document.GeneratedDocument, meta Meta) error {
	out := jsonReport{Meta: meta, Sections: []jsonSection{}, Tables: doc.Tables}
	if out.Tables == nil {
		out.Tables = []document.ExtractedTable{}
	}
	for _, cat := range doc.OrderedCategories() {
		out.Sections = append(out.Sections, jsonSection{Category: cat, Narrative: doc.Sections[cat]})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// ReadJSON decodes a report written by JSON. A bare GeneratedDocument,
// with sections keyed by category, is accepted too.
func ReadJSON(r io.Reader) (*document.GeneratedDocument, Meta, error) {
	var raw struct {
		Meta
		Sections json.RawMessage           `json:"sections"`
		Order    []document.Category       `json:"order"`
		Tables   []document.ExtractedTable `json:"tables"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, Meta{}, fmt.Errorf("decode json report: %w", err)
	}

	doc := document.NewGeneratedDocument()
	if raw.Tables != nil {
		doc.Tables = raw.Tables
	}
	if len(raw.Sections) == 0 || string(raw.Sections) == "null" {
		return doc, raw.Meta, nil
	}
	var list []jsonSection
	if err := json.Unmarshal(raw.Sections, &list); err == nil {
		for _, s := range list {
			doc.AddSection(s.Category, s.Narrative)
		}
		return doc, raw.Meta, nil
	}
	var byCat map[document.Category]string
	if err := json.Unmarshal(raw.Sections, &byCat); err != nil {
		return nil, Meta{}, fmt.Errorf("decode sections: %w", err)
	}
	for _, cat := range raw.Order {
		if s, ok := byCat[cat]; ok {
			doc.AddSection(cat, s)
		}
	}
	for cat, s := range byCat {
		if _, ok := doc.Sections[cat]; !ok {
			doc.Sections[cat] = s
		}
	}
	return doc, raw.Meta, nil
}
