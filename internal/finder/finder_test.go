// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/partfinder/internal/aggregate"
	"github.com/pdiddy/partfinder/internal/generate"
	"github.com/pdiddy/partfinder/internal/prompt"
	"github.com/pdiddy/partfinder/internal/render"
	"github.com/pdiddy/partfinder/pkg/types"
)

type fakeAggregator struct {
	calls int
	plans []aggregate.Plan
	build func(parts []types.PartQuery) types.AggregatedContext
}

func (f *fakeAggregator) Aggregate(_ context.Context, parts []types.PartQuery, plan aggregate.Plan) (types.AggregatedContext, error) {
	f.calls++
	f.plans = append(f.plans, plan)
	if f.build != nil {
		return f.build(parts), nil
	}
	out := types.AggregatedContext{}
	for _, p := range parts {
		out.Parts = append(out.Parts, types.PartContext{Query: p})
	}
	return out, nil
}

type fakeGenerator struct {
	calls  int
	last   generate.Request
	answer string
	err    error
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, r generate.Request) (string, error) {
	f.calls++
	f.last = r
	return f.answer, f.err
}

func newService(t *testing.T, agg Aggregator, gen generate.Generator, opts Options) *Service {
	t.Helper()
	b, err := prompt.NewBuilder("")
	require.NoError(t, err)
	return New(agg, b, gen, render.New(), opts, zaptest.NewLogger(t))
}

func defaultOptions() Options {
	return OptionsFromConfig(types.Config{Generation: types.GenerationConfig{ComparisonTemperature: 0.1}})
}

func TestAlternativesInvalidInput(t *testing.T) {
	agg, gen := &fakeAggregator{}, &fakeGenerator{answer: "x"}
	s := newService(t, agg, gen, defaultOptions())

	for _, in := range []string{"", "   "} {
		_, err := s.Alternatives(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err := s.Compare(context.Background(), "LM317", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, agg.calls)
	assert.Zero(t, gen.calls)
}

func TestNotConfigured(t *testing.T) {
	agg := &fakeAggregator{}
	s := newService(t, agg, nil, defaultOptions())
	assert.False(t, s.Configured())

	_, err := s.Alternatives(context.Background(), "LM317")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.Compare(context.Background(), "LM317", "LM350")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, agg.calls, "no outbound call before configuration is checked")
}

func TestAlternatives(t *testing.T) {
	agg := &fakeAggregator{build: func(parts []types.PartQuery) types.AggregatedContext {
		return types.AggregatedContext{Parts: []types.PartContext{{
			Query:         parts[0],
			SearchResults: []types.SearchResult{{Title: "LM317T", Link: "https://www.digikey.com/lm317t"}},
			Distributor: []types.DistributorFieldSet{
				{SourceURL: "https://www.digikey.com/lm317t", Fields: map[string]string{types.FieldPackageCase: "TO-220-3"}},
				{SourceURL: "https://www.digikey.com/lm317-sot", Fields: map[string]string{types.FieldPackageCase: types.NotFound}},
			},
		}}}
	}}
	gen := &fakeGenerator{answer: "## LM317\n\n### 1. LM338\n\n---\n\n### 2. LM350"}
	s := newService(t, agg, gen, defaultOptions())

	res, err := s.Alternatives(context.Background(), "LM317")
	require.NoError(t, err)

	assert.Equal(t, gen.answer, res.Markdown)
	assert.Equal(t, res.Markdown, res.Raw)
	assert.Equal(t, res.HTML, res.Alternatives)
	assert.Contains(t, res.HTML, "<h3")
	assert.Contains(t, res.HTML, "<hr")
	assert.Equal(t, []PackageInfo{
		{URL: "https://www.digikey.com/lm317t", PackageType: "TO-220-3"},
		{URL: "https://www.digikey.com/lm317-sot", PackageType: types.NotFound},
	}, res.PackageInfoList)
	assert.Len(t, res.SearchResults, 1)
	assert.Nil(t, res.Context)

	assert.Equal(t, 4000, gen.last.MaxTokens)
	assert.Nil(t, gen.last.Temperature)
	assert.Contains(t, gen.last.User, "LM317")
	assert.Contains(t, gen.last.User, "TO-220-3")
	require.Len(t, agg.plans, 1)
	assert.True(t, agg.plans[0].Distributor)
	assert.False(t, agg.plans[0].PartsDatabase)
}

func TestAlternativesEmptyAnswer(t *testing.T) {
	s := newService(t, &fakeAggregator{}, &fakeGenerator{err: generate.ErrEmptyOutput}, defaultOptions())
	_, err := s.Alternatives(context.Background(), "LM317")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestAlternativesGenerationError(t *testing.T) {
	apiErr := &generate.APIError{Provider: "OpenAI", StatusCode: 401, Message: "bad key"}
	s := newService(t, &fakeAggregator{}, &fakeGenerator{err: apiErr}, defaultOptions())

	_, err := s.Alternatives(context.Background(), "LM317")
	var ae *generate.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "bad key", ae.Message)
	assert.False(t, errors.Is(err, ErrEmptyAnswer))
}

func TestCompare(t *testing.T) {
	specs := func(pkg, current string) *types.PartSpecs {
		return &types.PartSpecs{Specs: []types.SpecValue{{Name: "Case/Package", Value: pkg}, {Name: "Output Current", Value: current}}}
	}
	agg := &fakeAggregator{build: func(parts []types.PartQuery) types.AggregatedContext {
		return types.AggregatedContext{Parts: []types.PartContext{
			{Query: parts[0], Specs: specs("TO-220", "1.5 A")},
			{Query: parts[1], Specs: specs("TO-220", "3 A")},
		}}
	}}
	gen := &fakeGenerator{answer: "| a | b |\n|---|---|\n| 1 | 2 |"}
	opts := defaultOptions()
	opts.IncludeContext = true
	s := newService(t, agg, gen, opts)

	res, err := s.Compare(context.Background(), "LM317", "LM350")
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `class="comparison-table"`)
	assert.Equal(t, []types.Similarity{{Attribute: "Case/Package", Value: "TO-220"}}, res.Similarities)
	assert.Equal(t, []types.Difference{{Attribute: "Output Current", PartA: "1.5 A", PartB: "3 A"}}, res.Differences)
	require.NotNil(t, res.Context)
	assert.Len(t, res.Context.Parts, 2)

	assert.Equal(t, 2000, gen.last.MaxTokens)
	require.NotNil(t, gen.last.Temperature)
	assert.InDelta(t, 0.1, *gen.last.Temperature, 1e-9)
	assert.Contains(t, gen.last.User, `"LM317" vs "LM350"`)
}

func TestCompareWithoutSpecs(t *testing.T) {
	s := newService(t, &fakeAggregator{}, &fakeGenerator{answer: "ok"}, defaultOptions())
	res, err := s.Compare(context.Background(), "NE555", "NE555")
	require.NoError(t, err)
	assert.Nil(t, res.PartA)
	assert.Empty(t, res.Similarities)
	assert.Empty(t, res.Differences)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := types.Config{
		Datasheet:   types.DatasheetConfig{Enabled: true},
		PartsDB:     types.PartsDBConfig{Token: "t"},
		Aggregation: types.AggregationConfig{PreferPartsDatabase: true},
	}
	o := OptionsFromConfig(cfg)
	assert.Equal(t, types.SelectFirst, o.AlternativesPlan.Selection)
	assert.True(t, o.AlternativesPlan.Datasheet)
	assert.False(t, o.AlternativesPlan.PartsDatabase)
	assert.True(t, o.ComparisonPlan.PartsDatabase)

	cfg.PartsDB.Token = ""
	assert.False(t, OptionsFromConfig(cfg).ComparisonPlan.PartsDatabase)
}
