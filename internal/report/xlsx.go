package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/docbrief/internal/document"
)

const summarySheet = "Summary"

// XLSX writes a workbook with a Summary sheet (one row per section, then
// one row per table summary) and one sheet per extracted table.
func XLSX(w io.Writer, doc *document.GeneratedDocument) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("create wrap style: %w", err)
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Section", "Narrative"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	row := 2
	for _, cat := range doc.OrderedCategories() {
		cell := "A" + strconv.Itoa(row)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{string(cat), plainText(doc.Sections[cat])}); err != nil {
			return fmt.Errorf("write section %s: %w", cat, err)
		}
		row++
	}
	for i, t := range doc.Tables {
		cell := "A" + strconv.Itoa(row)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{tableSheetName(i), t.Summary}); err != nil {
			return fmt.Errorf("write table summary %d: %w", i, err)
		}
		row++
	}
	if row > 2 {
		if err := f.SetCellStyle(summarySheet, "B2", "B"+strconv.Itoa(row-1), wrap); err != nil {
			return fmt.Errorf("style summary rows: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return fmt.Errorf("size summary sheet: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 100); err != nil {
		return fmt.Errorf("size summary sheet: %w", err)
	}

	for i, t := range doc.Tables {
		if err := writeTableSheet(f, tableSheetName(i), t, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func tableSheetName(i int) string {
	return "Table " + strconv.Itoa(i+1)
}

func writeTableSheet(f *excelize.File, name string, t document.ExtractedTable, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	header := make([]any, len(t.Headers))
	for j, h := range t.Headers {
		header[j] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return fmt.Errorf("%s header range: %w", name, err)
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", name, err)
		}
	}
	for i, r := range t.Rows {
		vals := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			vals[j] = cellValue(r[h])
		}
		if err := f.SetSheetRow(name, "A"+strconv.Itoa(i+2), &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// cellValue stores numeric-looking cells as numbers so they sort and sum.
func cellValue(s string) any {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return s
	}
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return f
	}
	return s
}
