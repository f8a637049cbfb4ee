package document

import "slices"

// CategorizedChunks groups chunks by category. Categories keep first-seen
// order and chunks keep insertion order within each category.
type CategorizedChunks struct {
	order  []Category
	chunks map[Category][]Chunk
}

func NewCategorizedChunks() *CategorizedChunks {
	return &CategorizedChunks{chunks: make(map[Category][]Chunk)}
}

// Add appends a chunk to a category's group.
func (c *CategorizedChunks) Add(cat Category, chunk Chunk) {
	if _, ok := c.chunks[cat]; !ok {
		c.order = append(c.order, cat)
	}
	c.chunks[cat] = append(c.chunks[cat], chunk)
}

// Categories returns the populated categories in first-seen order.
func (c *CategorizedChunks) Categories() []Category {
	out := make([]Category, len(c.order))
	copy(out, c.order)
	return out
}

// Chunks returns the chunks recorded for cat.
func (c *CategorizedChunks) Chunks(cat Category) []Chunk {
	return c.chunks[cat]
}

// Len returns the number of populated categories.
func (c *CategorizedChunks) Len() int {
	return len(c.order)
}

// GeneratedDocument is the output of one pipeline run. Sections holds only
// categories that received at least one chunk; Order lists them in
// synthesis order.
type GeneratedDocument struct {
	Sections map[Category]string `json:"sections"`
	Order    []Category          `json:"order,omitempty"`
	Tables   []ExtractedTable    `json:"tables"`
}

// NewGeneratedDocument returns an empty document with initialized maps.
func NewGeneratedDocument() *GeneratedDocument {
	return &GeneratedDocument{
		Sections: make(map[Category]string),
		Tables:   []ExtractedTable{},
	}
}

// AddSection records a section, keeping Order in sync.
func (d *GeneratedDocument) AddSection(cat Category, text string) {
	if d.Sections == nil {
		d.Sections = make(map[Category]string)
	}
	if _, ok := d.Sections[cat]; !ok {
		d.Order = append(d.Order, cat)
	}
	d.Sections[cat] = text
}

// Section returns the narrative for cat, or "" when absent.
func (d *GeneratedDocument) Section(cat Category) string {
	return d.Sections[cat]
}

// OrderedCategories returns Order when it covers every section, otherwise
// the section keys in the default category order followed by the rest.
func (d *GeneratedDocument) OrderedCategories() []Category {
	return orderedKeys(d.Order, d.Sections)
}

// ExemplarDocument holds reference narratives per category.
type ExemplarDocument struct {
	Name     string              `json:"name,omitempty" yaml:"name,omitempty"`
	Sections map[Category]string `json:"sections" yaml:"sections"`
	Order    []Category          `json:"order,omitempty" yaml:"order,omitempty"`
}

// Section returns the exemplar narrative for cat and whether it exists.
func (e *ExemplarDocument) Section(cat Category) (string, bool) {
	if e == nil {
		return "", false
	}
	s, ok := e.Sections[cat]
	return s, ok
}

// OrderedCategories returns the exemplar's categories in a stable order.
func (e *ExemplarDocument) OrderedCategories() []Category {
	return orderedKeys(e.Order, e.Sections)
}

// EvaluationResult scores a generated document against an exemplar. A score
// of 0 means the category was missing from the generated document.
type EvaluationResult struct {
	SectionScores map[Category]float64 `json:"section_scores"`
	Order         []Category           `json:"order,omitempty"`
	OverallScore  float64              `json:"overall_score"`
}

func orderedKeys[V any](order []Category, m map[Category]V) []Category {
	out := make([]Category, 0, len(m))
	seen := make(map[Category]bool, len(m))
	for _, c := range order {
		if _, ok := m[c]; ok && !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	for _, info := range DefaultCategories.members {
		if _, ok := m[info.Name]; ok && !seen[info.Name] {
			out = append(out, info.Name)
			seen[info.Name] = true
		}
	}
	var rest []Category
	for c := range m {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
