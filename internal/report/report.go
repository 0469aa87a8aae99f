// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report exports comparison results as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/partfinder/internal/finder"
	"github.com/pdiddy/partfinder/pkg/types"
)

// Sheet names in the exported workbook.
const (
	SheetSummary      = "Summary"
	SheetSimilarities = "Similarities"
	SheetDifferences  = "Differences"
	SheetAnalysis     = "Analysis"
)

const columnWidth = 28

// WriteComparison writes res as a workbook to w. partA and partB label the
// columns when the parts database did not return a record.
func WriteComparison(w io.Writer, partA, partB string, res *finder.ComparisonResult) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	labelA, labelB := label(partA, res.PartA), label(partB, res.PartB)

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming default sheet: %w", err)
	}
	summary := [][]any{
		{"", labelA, labelB},
		{"Manufacturer", manufacturer(res.PartA), manufacturer(res.PartB)},
		{"MPN", mpn(partA, res.PartA), mpn(partB, res.PartB)},
		{"Shared attributes", len(res.Similarities), len(res.Similarities)},
		{"Differing attributes", len(res.Differences), len(res.Differences)},
	}
	if err := writeRows(f, SheetSummary, summary, header); err != nil {
		return err
	}

	sims := [][]any{{"Attribute", "Value"}}
	for _, s := range res.Similarities {
		sims = append(sims, []any{s.Attribute, s.Value})
	}
	if err := addSheet(f, SheetSimilarities, sims, header); err != nil {
		return err
	}

	diffs := [][]any{{"Attribute", labelA, labelB}}
	for _, d := range res.Differences {
		diffs = append(diffs, []any{d.Attribute, d.PartA, d.PartB})
	}
	if err := addSheet(f, SheetDifferences, diffs, header); err != nil {
		return err
	}

	if err := addSheet(f, SheetAnalysis, [][]any{{"Analysis"}, {res.Markdown}}, header); err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("creating wrap style: %w", err)
	}
	if err := f.SetCellStyle(SheetAnalysis, "A2", "A2", wrap); err != nil {
		return fmt.Errorf("styling analysis: %w", err)
	}
	if err := f.SetColWidth(SheetAnalysis, "A", "A", 120); err != nil {
		return fmt.Errorf("sizing analysis column: %w", err)
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]any, header int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows, header)
}

// writeRows writes rows starting at A1 and styles the first row as a header.
func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
		return fmt.Errorf("sizing %s columns: %w", sheet, err)
	}
	return nil
}

func label(query string, specs *types.PartSpecs) string {
	if specs != nil && specs.MPN != "" {
		return specs.MPN
	}
	return query
}

func mpn(query string, specs *types.PartSpecs) string {
	if specs == nil {
		return query
	}
	return specs.MPN
}

func manufacturer(specs *types.PartSpecs) string {
	if specs == nil {
		return types.NotFound
	}
	return specs.Manufacturer
}
