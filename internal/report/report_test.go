// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/partfinder/internal/finder"
	"github.com/pdiddy/partfinder/pkg/types"
)

func open(t *testing.T, res *finder.ComparisonResult) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, "lm317", "lm350", res))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteComparison(t *testing.T) {
	res := &finder.ComparisonResult{
		Markdown:     "## Overview\n| a | b |",
		PartA:        &types.PartSpecs{MPN: "LM317T", Manufacturer: "Texas Instruments"},
		PartB:        &types.PartSpecs{MPN: "LM350T", Manufacturer: "onsemi"},
		Similarities: []types.Similarity{{Attribute: "Case/Package", Value: "TO-220"}},
		Differences: []types.Difference{
			{Attribute: "Output Current", PartA: "1.5 A", PartB: "3 A"},
			{Attribute: "Dropout Voltage", PartA: "2.5 V", PartB: types.NotFound},
		},
	}
	f := open(t, res)

	assert.Equal(t, []string{SheetSummary, SheetSimilarities, SheetDifferences, SheetAnalysis}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "LM317T", "LM350T"}, summary[0])
	assert.Equal(t, []string{"Manufacturer", "Texas Instruments", "onsemi"}, summary[1])

	sims, err := f.GetRows(SheetSimilarities)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Attribute", "Value"}, {"Case/Package", "TO-220"}}, sims)

	diffs, err := f.GetRows(SheetDifferences)
	require.NoError(t, err)
	require.Len(t, diffs, 3)
	assert.Equal(t, []string{"Attribute", "LM317T", "LM350T"}, diffs[0])
	assert.Equal(t, []string{"Dropout Voltage", "2.5 V", types.NotFound}, diffs[2])

	text, err := f.GetCellValue(SheetAnalysis, "A2")
	require.NoError(t, err)
	assert.Equal(t, res.Markdown, text)
}

func TestWriteComparisonWithoutSpecs(t *testing.T) {
	f := open(t, &finder.ComparisonResult{Markdown: "ok"})

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "lm317", "lm350"}, summary[0])
	assert.Equal(t, []string{"Manufacturer", types.NotFound, types.NotFound}, summary[1])

	diffs, err := f.GetRows(SheetDifferences)
	require.NoError(t, err)
	assert.Len(t, diffs, 1, "header only")
}
