// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/partfinder/pkg/types"
)

func lm317Context() types.AggregatedContext {
	return types.AggregatedContext{Parts: []types.PartContext{{
		Query: "LM317",
		SearchResults: []types.SearchResult{
			{Title: "LM317T Texas Instruments", Link: "https://www.digikey.com/en/products/detail/LM317T", Snippet: "Linear Voltage Regulator"},
		},
		Distributor: []types.DistributorFieldSet{{
			SourceURL: "https://www.digikey.com/en/products/detail/LM317T",
			Fields: map[string]string{
				types.FieldPackageCase: "TO-220-3",
				types.FieldUnitPrice:   types.NotFound,
			},
		}},
		Datasheets: []types.DatasheetExcerpt{{SourceURL: "https://www.ti.com/lit/ds/lm317.pdf", Text: "LM317 3-Terminal Adjustable Regulator"}},
	}}}
}

func newBuilder(t *testing.T, policy string) *Builder {
	t.Helper()
	b, err := NewBuilder(policy)
	require.NoError(t, err)
	return b
}

func TestPolicies(t *testing.T) {
	ps, err := Policies()
	require.NoError(t, err)
	for _, name := range []string{"standard", "strict"} {
		p, ok := ps[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, p.AlternativesSystem)
		assert.NotEmpty(t, p.ComparisonSystem)
		assert.NotEmpty(t, p.Rules)
		assert.Equal(t, 5, p.AlternativeCount)
	}
}

func TestNewBuilder(t *testing.T) {
	assert.Equal(t, "standard", newBuilder(t, "").Policy().Name)
	assert.Equal(t, "strict", newBuilder(t, "strict").Policy().Name)

	_, err := NewBuilder("lenient")
	assert.Error(t, err)
}

func TestBuildAlternatives(t *testing.T) {
	p, err := newBuilder(t, "").Build(KindAlternatives, []types.PartQuery{"LM317"}, lm317Context())
	require.NoError(t, err)

	assert.Contains(t, p.System, "finding component alternatives")
	for _, want := range []string{
		"part number: LM317.",
		"TO-220-3",
		"Distributor listing fields (source: https://www.digikey.com/en/products/detail/LM317T)",
		"- Unit Price: N/A",
		"Datasheet excerpt (source: https://www.ti.com/lit/ds/lm317.pdf)",
		"1. LM317T Texas Instruments <https://www.digikey.com/en/products/detail/LM317T> Linear Voltage Regulator",
		"5 alternative part numbers",
		"---",
		"**Summary and Conclusion**",
		"unverified",
	} {
		assert.Contains(t, p.User, want)
	}
}

func TestBuildAlternativesRankingOrder(t *testing.T) {
	p, err := newBuilder(t, "").Build(KindAlternatives, []types.PartQuery{"LM317"}, lm317Context())
	require.NoError(t, err)

	order := []string{"package match", "functional match", "lifecycle status", "distributor availability", "price"}
	last := -1
	for _, term := range order {
		i := strings.Index(p.User, term)
		require.GreaterOrEqual(t, i, 0, term)
		assert.Greater(t, i, last, "%q out of order", term)
		last = i
	}
}

func TestBuildWithoutContext(t *testing.T) {
	p, err := newBuilder(t, "").Build(KindAlternatives, []types.PartQuery{"XYZ123"}, types.AggregatedContext{})
	require.NoError(t, err)
	assert.Contains(t, p.User, "XYZ123")
	assert.Contains(t, p.User, "No external reference data was retrieved")
	assert.NotContains(t, p.User, "Distributor listing fields")
}

func TestBuildNotes(t *testing.T) {
	actx := types.AggregatedContext{Parts: []types.PartContext{{Query: "LM317", Notes: []string{"search unavailable"}}}}
	p, err := newBuilder(t, "").Build(KindAlternatives, []types.PartQuery{"LM317"}, actx)
	require.NoError(t, err)
	assert.Contains(t, p.User, "Data gaps: search unavailable.")
}

func TestBuildComparison(t *testing.T) {
	actx := types.AggregatedContext{Parts: []types.PartContext{
		{Query: "LM317", Specs: &types.PartSpecs{MPN: "LM317", Manufacturer: "TI", Specs: []types.SpecValue{
			{Name: "Case/Package", Value: "TO-220"}, {Name: "Output Current", Value: "1.5 A"},
		}}},
		{Query: "LM350", Specs: &types.PartSpecs{MPN: "LM350", Manufacturer: "ST", Specs: []types.SpecValue{
			{Name: "Case/Package", Value: "TO-220"}, {Name: "Output Current", Value: "3 A"},
		}}},
	}}

	p, err := newBuilder(t, "strict").Build(KindComparison, []types.PartQuery{"LM317", "LM350"}, actx)
	require.NoError(t, err)

	assert.Contains(t, p.System, "audit-grade")
	for _, want := range []string{
		`"LM317" vs "LM350"`,
		"**OVERVIEW TABLE**",
		"**DROP-IN COMPATIBILITY ASSESSMENT**",
		"- Case/Package: same (TO-220)",
		"- Output Current: LM317 = 1.5 A, LM350 = 3 A",
		"### Reference data for Part A: LM317",
		"### Reference data for Part B: LM350",
		"Parts database record: LM350 (ST)",
	} {
		assert.Contains(t, p.User, want)
	}
}

func TestBuildComparisonWithoutSpecs(t *testing.T) {
	p, err := newBuilder(t, "").Build(KindComparison, []types.PartQuery{"NE555", "NE555"}, types.AggregatedContext{})
	require.NoError(t, err)
	assert.Contains(t, p.User, `"NE555" vs "NE555"`)
	assert.NotContains(t, p.User, "Parts database comparison")
}

func TestBuildDeterministic(t *testing.T) {
	b := newBuilder(t, "")
	first, err := b.Build(KindAlternatives, []types.PartQuery{"LM317"}, lm317Context())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := b.Build(KindAlternatives, []types.PartQuery{"LM317"}, lm317Context())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuildErrors(t *testing.T) {
	b := newBuilder(t, "")
	tests := []struct {
		name  string
		kind  Kind
		parts []types.PartQuery
	}{
		{"alternatives with two parts", KindAlternatives, []types.PartQuery{"A", "B"}},
		{"comparison with one part", KindComparison, []types.PartQuery{"A"}},
		{"unknown kind", Kind("summary"), []types.PartQuery{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.kind, tt.parts, types.AggregatedContext{})
			assert.Error(t, err)
		})
	}
}
