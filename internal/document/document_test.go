package document

import (
	"testing"
)

func TestNewExtractedTable_AlignsRowsToHeaders(t *testing.T) {
	raw := RawTable{
		Headers: []string{" Name ", "Position", "Department"},
		Rows: [][]string{
			{"John Doe", " Manager", "Sales"},
			{"Jane Smith", "Engineer"},
			{"Extra", "Cells", "Here", "Dropped"},
		},
	}
	tbl := NewExtractedTable(raw)

	if tbl.Headers[0] != "Name" {
		t.Errorf("expected trimmed header %q, got %q", "Name", tbl.Headers[0])
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["Position"] != "Manager" {
		t.Errorf("expected trimmed cell %q, got %q", "Manager", tbl.Rows[0]["Position"])
	}
	if _, ok := tbl.Rows[1]["Department"]; ok {
		t.Error("expected short row to omit missing column")
	}
	if len(tbl.Rows[2]) != 3 {
		t.Errorf("expected extra cells to be dropped, got %d columns", len(tbl.Rows[2]))
	}
}

func TestExtractedTable_SampleRows(t *testing.T) {
	tbl := ExtractedTable{Rows: make([]map[string]string, 5)}
	tests := []struct {
		n    int
		want int
	}{
		{3, 3},
		{10, 5},
		{0, 0},
		{-1, 0},
	}
	for _, tc := range tests {
		if got := len(tbl.SampleRows(tc.n)); got != tc.want {
			t.Errorf("SampleRows(%d): expected %d rows, got %d", tc.n, tc.want, got)
		}
	}
}

func TestCategorySet_Parse(t *testing.T) {
	tests := []struct {
		reply   string
		want    Category
		matched bool
	}{
		{"Water", Water, true},
		{"  fire\n", Fire, true},
		{"**Administrative**", Administrative, true},
		{"Other.", Other, true},
		{"Section: Fire", Fire, true},
		{"Seismic", Other, false},
		{"Fire or Water", Other, false},
		{"", Other, false},
	}
	for _, tc := range tests {
		got, matched := DefaultCategories.Parse(tc.reply)
		if got != tc.want || matched != tc.matched {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tc.reply, got, matched, tc.want, tc.matched)
		}
	}
}

func TestNewCategorySet_Validation(t *testing.T) {
	if _, err := NewCategorySet(Other); err == nil {
		t.Error("expected empty set to fail")
	}
	if _, err := NewCategorySet("Missing", CategoryInfo{Name: Water}); err == nil {
		t.Error("expected fallback outside the set to fail")
	}
	if _, err := NewCategorySet(Water, CategoryInfo{Name: Water}, CategoryInfo{Name: "water"}); err == nil {
		t.Error("expected duplicate names to fail")
	}
}

func TestCategorizedChunks_PreservesOrder(t *testing.T) {
	cc := NewCategorizedChunks()
	cc.Add(Fire, TextChunk("a"))
	cc.Add(Water, TextChunk("b"))
	cc.Add(Fire, TableChunk("c", 0))

	cats := cc.Categories()
	if len(cats) != 2 || cats[0] != Fire || cats[1] != Water {
		t.Fatalf("expected [Fire Water], got %v", cats)
	}
	fire := cc.Chunks(Fire)
	if len(fire) != 2 || fire[0].Text != "a" || fire[1].Text != "c" {
		t.Errorf("expected Fire chunks [a c], got %+v", fire)
	}
	if !fire[1].IsTable || fire[1].TableIndex != 0 {
		t.Errorf("expected table chunk with index 0, got %+v", fire[1])
	}
}

func TestGeneratedDocument_OrderedCategories(t *testing.T) {
	doc := &GeneratedDocument{Sections: map[Category]string{
		"Zeta":  "z",
		Other:   "o",
		Water:   "w",
		"Alpha": "a",
	}}
	got := doc.OrderedCategories()
	want := []Category{Water, Other, "Alpha", "Zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	doc.AddSection(Fire, "f")
	if doc.Section(Fire) != "f" {
		t.Errorf("expected section text %q, got %q", "f", doc.Section(Fire))
	}
	if doc.Section(Administrative) != "" {
		t.Error("expected empty text for absent section")
	}
}

func TestByteSpan(t *testing.T) {
	s := SpanFromOffset(10, 5)
	if s.Start != 10 || s.End != 15 {
		t.Errorf("expected [10,15), got [%d,%d)", s.Start, s.End)
	}
	if !s.Valid() {
		t.Error("expected span to be valid")
	}
	if (ByteSpan{Start: 5, End: 4}).Valid() {
		t.Error("expected reversed span to be invalid")
	}
}
