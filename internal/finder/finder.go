// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finder runs the request pipeline: aggregate context, build the
// prompt, generate, and render. It is the single entry point used by both
// the HTTP server and the CLI.
package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/internal/aggregate"
	"github.com/pdiddy/partfinder/internal/generate"
	"github.com/pdiddy/partfinder/internal/partsdb"
	"github.com/pdiddy/partfinder/internal/prompt"
	"github.com/pdiddy/partfinder/internal/render"
	"github.com/pdiddy/partfinder/pkg/types"
)

var (
	// ErrInvalidInput marks a missing or blank part number.
	ErrInvalidInput = aggregate.ErrInvalidInput

	// ErrNotConfigured is returned before any outbound call when no
	// generation backend is configured.
	ErrNotConfigured = errors.New("server is not configured with a generation API key")

	// ErrEmptyAnswer is returned when the model produced no text.
	ErrEmptyAnswer = generate.ErrEmptyOutput
)

// Aggregator gathers context. *aggregate.Aggregator implements it.
type Aggregator interface {
	Aggregate(ctx context.Context, parts []types.PartQuery, plan aggregate.Plan) (types.AggregatedContext, error)
}

// PromptBuilder renders prompts. *prompt.Builder implements it.
type PromptBuilder interface {
	Build(kind prompt.Kind, parts []types.PartQuery, actx types.AggregatedContext) (prompt.Prompt, error)
}

// Renderer turns markdown into HTML. *render.Renderer implements it.
type Renderer interface {
	Render(markdown string, kind render.Kind) (string, error)
}

// Options tune the two request kinds.
type Options struct {
	AlternativesPlan      aggregate.Plan
	ComparisonPlan        aggregate.Plan
	AlternativesMaxTokens int
	ComparisonMaxTokens   int
	ComparisonTemperature float64
	GenerationTimeout     time.Duration
	IncludeContext        bool
}

// OptionsFromConfig derives pipeline options from cfg. The parts database is
// planned for comparisons only when it is preferred and configured.
func OptionsFromConfig(cfg types.Config) Options {
	sel := cfg.Distributor.Selection
	if sel == "" {
		sel = types.SelectFirst
	}
	o := Options{
		AlternativesPlan: aggregate.Plan{
			Distributor: true,
			Selection:   sel,
			Datasheet:   cfg.Datasheet.Enabled,
		},
		ComparisonPlan: aggregate.Plan{
			Distributor:   true,
			Selection:     sel,
			Datasheet:     cfg.Datasheet.Enabled,
			PartsDatabase: cfg.Aggregation.PreferPartsDatabase && cfg.PartsDB.Configured(),
		},
		AlternativesMaxTokens: cfg.Generation.AlternativesMaxTokens,
		ComparisonMaxTokens:   cfg.Generation.ComparisonMaxTokens,
		ComparisonTemperature: cfg.Generation.ComparisonTemperature,
		GenerationTimeout:     cfg.Generation.Timeout,
		IncludeContext:        cfg.Server.IncludeContext,
	}
	if o.AlternativesMaxTokens <= 0 {
		o.AlternativesMaxTokens = 4000
	}
	if o.ComparisonMaxTokens <= 0 {
		o.ComparisonMaxTokens = 2000
	}
	return o
}

// PackageInfo is the package reported by one distributor listing.
type PackageInfo struct {
	URL         string `json:"url" yaml:"url"`
	PackageType string `json:"packageType" yaml:"package_type"`
}

// AlternativesResult is the answer to an alternatives request.
type AlternativesResult struct {
	Alternatives    string                   `json:"alternatives" yaml:"-"`
	HTML            string                   `json:"html" yaml:"-"`
	Raw             string                   `json:"raw" yaml:"-"`
	Markdown        string                   `json:"markdown" yaml:"markdown"`
	PackageInfoList []PackageInfo            `json:"packageInfoList" yaml:"package_info"`
	SearchResults   []types.SearchResult     `json:"searchResults" yaml:"search_results"`
	Context         *types.AggregatedContext `json:"context,omitempty" yaml:"context,omitempty"`
}

// ComparisonResult is the answer to a compare request. PartA, PartB,
// Similarities, and Differences are set when both parts were found in the
// parts database.
type ComparisonResult struct {
	HTML         string                   `json:"html" yaml:"-"`
	Markdown     string                   `json:"markdown" yaml:"markdown"`
	PartA        *types.PartSpecs         `json:"partA,omitempty" yaml:"part_a,omitempty"`
	PartB        *types.PartSpecs         `json:"partB,omitempty" yaml:"part_b,omitempty"`
	Similarities []types.Similarity       `json:"similarities,omitempty" yaml:"similarities,omitempty"`
	Differences  []types.Difference       `json:"differences,omitempty" yaml:"differences,omitempty"`
	Context      *types.AggregatedContext `json:"context,omitempty" yaml:"context,omitempty"`
}

// Service wires the pipeline stages.
type Service struct {
	agg      Aggregator
	prompts  PromptBuilder
	gen      generate.Generator
	renderer Renderer
	opts     Options
	logger   *zap.Logger
}

// New creates a Service. gen may be nil, in which case every request fails
// with ErrNotConfigured after input validation.
func New(agg Aggregator, prompts PromptBuilder, gen generate.Generator, renderer Renderer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{agg: agg, prompts: prompts, gen: gen, renderer: renderer, opts: opts, logger: logger}
}

// Configured reports whether a generation backend is present.
func (s *Service) Configured() bool { return s.gen != nil }

// Context aggregates without generating. It backs the CLI context command.
func (s *Service) Context(ctx context.Context, parts []types.PartQuery, kind prompt.Kind) (types.AggregatedContext, error) {
	plan := s.opts.AlternativesPlan
	if kind == prompt.KindComparison {
		plan = s.opts.ComparisonPlan
	}
	return s.agg.Aggregate(ctx, parts, plan)
}

// Alternatives suggests replacement parts for part.
func (s *Service) Alternatives(ctx context.Context, part string) (*AlternativesResult, error) {
	parts := []types.PartQuery{types.PartQuery(part)}
	if err := s.precheck(parts); err != nil {
		return nil, err
	}

	actx, err := s.agg.Aggregate(ctx, parts, s.opts.AlternativesPlan)
	if err != nil {
		return nil, err
	}
	md, html, err := s.answer(ctx, prompt.KindAlternatives, render.KindAlternatives, parts, actx, s.opts.AlternativesMaxTokens, nil)
	if err != nil {
		return nil, err
	}

	pc := actx.Parts[0]
	res := &AlternativesResult{
		Alternatives:    html,
		HTML:            html,
		Raw:             md,
		Markdown:        md,
		PackageInfoList: packageInfo(pc.Distributor),
		SearchResults:   pc.SearchResults,
	}
	if s.opts.IncludeContext {
		res.Context = &actx
	}
	return res, nil
}

// Compare compares partA with partB.
func (s *Service) Compare(ctx context.Context, partA, partB string) (*ComparisonResult, error) {
	parts := []types.PartQuery{types.PartQuery(partA), types.PartQuery(partB)}
	if err := s.precheck(parts); err != nil {
		return nil, err
	}

	actx, err := s.agg.Aggregate(ctx, parts, s.opts.ComparisonPlan)
	if err != nil {
		return nil, err
	}
	md, html, err := s.answer(ctx, prompt.KindComparison, render.KindComparison, parts, actx, s.opts.ComparisonMaxTokens, generate.Float(s.opts.ComparisonTemperature))
	if err != nil {
		return nil, err
	}

	res := &ComparisonResult{HTML: html, Markdown: md}
	a, b := actx.Parts[0].Specs, actx.Parts[1].Specs
	if a != nil && b != nil {
		res.PartA, res.PartB = a, b
		res.Similarities, res.Differences = partsdb.Compare(*a, *b)
	}
	if s.opts.IncludeContext {
		res.Context = &actx
	}
	return res, nil
}

// precheck rejects bad input, then a missing generation backend, before any
// adapter runs.
func (s *Service) precheck(parts []types.PartQuery) error {
	if err := aggregate.Validate(parts); err != nil {
		return err
	}
	if s.gen == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) answer(ctx context.Context, pk prompt.Kind, rk render.Kind, parts []types.PartQuery, actx types.AggregatedContext, maxTokens int, temperature *float64) (string, string, error) {
	p, err := s.prompts.Build(pk, parts, actx)
	if err != nil {
		return "", "", fmt.Errorf("building prompt: %w", err)
	}

	genCtx := ctx
	if s.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.GenerationTimeout)
		defer cancel()
	}

	start := time.Now()
	md, err := s.gen.Generate(genCtx, generate.Request{System: p.System, User: p.User, MaxTokens: maxTokens, Temperature: temperature})
	if err != nil {
		s.logger.Error("generation failed", zap.String("kind", string(pk)), zap.String("backend", s.gen.Name()), zap.Error(err))
		return "", "", fmt.Errorf("generating %s: %w", pk, err)
	}
	s.logger.Info("generation complete",
		zap.String("kind", string(pk)),
		zap.String("backend", s.gen.Name()),
		zap.Int("prompt_chars", len(p.User)),
		zap.Int("answer_chars", len(md)),
		zap.Duration("elapsed", time.Since(start)),
	)

	html, err := s.renderer.Render(md, rk)
	if err != nil {
		return "", "", fmt.Errorf("rendering answer: %w", err)
	}
	return md, html, nil
}

func packageInfo(sets []types.DistributorFieldSet) []PackageInfo {
	out := make([]PackageInfo, 0, len(sets))
	for i := range sets {
		out = append(out, PackageInfo{URL: sets[i].SourceURL, PackageType: sets[i].Value(types.FieldPackageCase)})
	}
	return out
}
