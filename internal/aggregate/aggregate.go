// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate gathers search results, distributor fields, datasheet
// excerpts, and parts-database records for one or two part queries and
// bundles them into a types.AggregatedContext. Adapter failures never fail
// the aggregation: each one degrades to "no data" for its sub-query and is
// recorded as a note on the affected part.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/partfinder/internal/datasheet"
	"github.com/pdiddy/partfinder/internal/search"
	"github.com/pdiddy/partfinder/pkg/types"
)

// ErrInvalidInput is returned when the part list is unusable. No adapter is
// called in that case.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultCallTimeout     = 10 * time.Second
	defaultMaxCandidates   = 5
	defaultDatasheetTries  = 2
	maxExtractConcurrency  = 5
	maxPartsPerAggregation = 2
)

// Searcher runs a domain-restricted web search. *search.Provider implements it.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]types.SearchResult, error)
}

// FieldExtractor reads specification fields from a distributor page.
// *distributor.Extractor implements it.
type FieldExtractor interface {
	Extract(ctx context.Context, url string, fieldNames []string) (*types.DistributorFieldSet, error)
}

// TextExtractor returns a bounded datasheet excerpt, or "" on any failure.
// *datasheet.Extractor implements it.
type TextExtractor interface {
	Extract(ctx context.Context, url string, maxChars int) string
}

// PartsDatabase looks up structured specs. *partsdb.Client implements it.
type PartsDatabase interface {
	Lookup(ctx context.Context, mpns []string) (map[string]types.PartSpecs, error)
}

// Adapters are the data sources available to the aggregator. A nil adapter
// disables the steps that need it.
type Adapters struct {
	Search        Searcher
	Distributor   FieldExtractor
	Datasheet     TextExtractor
	PartsDatabase PartsDatabase
}

// Plan selects which enrichment steps run for one aggregation.
type Plan struct {
	// Distributor enables distributor page extraction.
	Distributor bool

	// Selection is the candidate policy; empty means types.SelectFirst.
	Selection types.Selection

	// Datasheet enables datasheet search and text extraction.
	Datasheet bool

	// PartsDatabase consults the parts database before web search.
	PartsDatabase bool
}

// Options are the bounds applied to every aggregation.
type Options struct {
	DistributorDomains     []string
	DatasheetDomains       []string
	MaxResults             int
	Fields                 []string
	MaxCandidates          int
	DatasheetMaxChars      int
	DatasheetMaxCandidates int
	CallTimeout            time.Duration
}

// OptionsFromConfig derives aggregation bounds from cfg, filling defaults.
func OptionsFromConfig(cfg types.Config) Options {
	o := Options{
		DistributorDomains:     cfg.Search.DistributorDomains,
		DatasheetDomains:       cfg.Search.DatasheetDomains,
		MaxResults:             cfg.Search.MaxResults,
		Fields:                 cfg.Distributor.Fields,
		MaxCandidates:          cfg.Distributor.MaxCandidates,
		DatasheetMaxChars:      cfg.Datasheet.MaxChars,
		DatasheetMaxCandidates: cfg.Datasheet.MaxCandidates,
		CallTimeout:            cfg.Aggregation.CallTimeout,
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if len(o.Fields) == 0 {
		o.Fields = types.DefaultDistributorFields
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = defaultMaxCandidates
	}
	if o.DatasheetMaxChars <= 0 {
		o.DatasheetMaxChars = datasheet.DefaultMaxChars
	}
	if o.DatasheetMaxCandidates <= 0 {
		o.DatasheetMaxCandidates = defaultDatasheetTries
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultCallTimeout
	}
	return o
}

// Aggregator fans out to the adapters and assembles the context.
type Aggregator struct {
	adapters Adapters
	opts     Options
	logger   *zap.Logger
}

// New creates an Aggregator. A nil logger discards output.
func New(adapters Adapters, opts Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{adapters: adapters, opts: opts.withDefaults(), logger: logger}
}

// Validate checks the part list: one or two entries, none blank.
func Validate(parts []types.PartQuery) error {
	if len(parts) == 0 || len(parts) > maxPartsPerAggregation {
		return fmt.Errorf("%w: expected 1 or 2 part numbers, got %d", ErrInvalidInput, len(parts))
	}
	for i, p := range parts {
		if p.IsEmpty() {
			return fmt.Errorf("%w: part number %d is empty", ErrInvalidInput, i+1)
		}
	}
	return nil
}

// Aggregate gathers context for parts, in input order. The only error is an
// input error; adapter failures become notes.
func (a *Aggregator) Aggregate(ctx context.Context, parts []types.PartQuery, plan Plan) (types.AggregatedContext, error) {
	if err := Validate(parts); err != nil {
		return types.AggregatedContext{}, err
	}

	out := make([]types.PartContext, len(parts))
	for i, p := range parts {
		out[i] = types.PartContext{
			Query:         types.PartQuery(p.String()),
			SearchResults: []types.SearchResult{},
			Distributor:   []types.DistributorFieldSet{},
			Datasheets:    []types.DatasheetExcerpt{},
		}
	}

	if plan.PartsDatabase && a.adapters.PartsDatabase != nil {
		a.lookupSpecs(ctx, out)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		g.Go(func() error {
			a.gather(gctx, &out[i], plan)
			return nil
		})
	}
	_ = g.Wait()

	return types.AggregatedContext{Parts: out}, nil
}

// lookupSpecs resolves every part in one parts-database call. A failure is
// noted on each part, which then falls back to web search.
func (a *Aggregator) lookupSpecs(ctx context.Context, parts []types.PartContext) {
	mpns := make([]string, len(parts))
	for i, p := range parts {
		mpns[i] = p.Query.String()
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()
	found, err := a.adapters.PartsDatabase.Lookup(callCtx, mpns)
	if err != nil {
		a.logger.Warn("parts database lookup failed", zap.Strings("parts", mpns), zap.Error(err))
		for i := range parts {
			parts[i].Notes = append(parts[i].Notes, "parts database unavailable")
		}
		return
	}
	for i := range parts {
		if specs, ok := found[mpns[i]]; ok {
			parts[i].Specs = &specs
		} else {
			parts[i].Notes = append(parts[i].Notes, "not found in parts database")
		}
	}
}

// gather fills pc from web search and page enrichment. Parts already
// resolved by the parts database are left as they are.
func (a *Aggregator) gather(ctx context.Context, pc *types.PartContext, plan Plan) {
	if pc.Specs != nil {
		return
	}
	if a.adapters.Search == nil {
		pc.Notes = append(pc.Notes, "search not configured")
		return
	}
	part := pc.Query.String()

	results, err := a.search(ctx, search.Query{Part: part, Domains: a.opts.DistributorDomains, MaxResults: a.opts.MaxResults})
	if err != nil {
		a.logger.Warn("part search failed", zap.String("part", part), zap.Error(err))
		pc.Notes = append(pc.Notes, "search unavailable")
	} else {
		pc.SearchResults = results
	}

	withDatasheet := plan.Datasheet && a.adapters.Datasheet != nil
	if withDatasheet {
		ds, err := a.search(ctx, search.Query{
			Part:       part,
			Terms:      []string{"datasheet"},
			Domains:    a.opts.DatasheetDomains,
			FileType:   "pdf",
			MaxResults: a.opts.MaxResults,
		})
		if err != nil {
			a.logger.Warn("datasheet search failed", zap.String("part", part), zap.Error(err))
			pc.Notes = append(pc.Notes, "datasheet search unavailable")
		} else {
			pc.DatasheetResults = ds
		}
	}

	if plan.Distributor && a.adapters.Distributor != nil && len(pc.SearchResults) > 0 {
		sets, notes := a.enrichDistributor(ctx, part, pc.SearchResults, plan.Selection)
		pc.Distributor = sets
		pc.Notes = append(pc.Notes, notes...)
	}

	if withDatasheet {
		if ex, ok := a.enrichDatasheet(ctx, datasheetCandidates(pc.DatasheetResults, pc.SearchResults, a.opts.DatasheetMaxCandidates)); ok {
			pc.Datasheets = append(pc.Datasheets, ex)
		} else if len(pc.DatasheetResults) > 0 {
			pc.Notes = append(pc.Notes, "no datasheet text extracted")
		}
	}
}

func (a *Aggregator) search(ctx context.Context, q search.Query) ([]types.SearchResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()
	results, err := a.adapters.Search.Search(callCtx, q)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []types.SearchResult{}
	}
	return results, nil
}

func (a *Aggregator) extract(ctx context.Context, link string) (*types.DistributorFieldSet, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()
	return a.adapters.Distributor.Extract(callCtx, link, a.opts.Fields)
}

// enrichDistributor applies the selection policy to the search candidates.
// Notes are returned in candidate order.
func (a *Aggregator) enrichDistributor(ctx context.Context, part string, results []types.SearchResult, sel types.Selection) ([]types.DistributorFieldSet, []string) {
	candidates := results
	if len(candidates) > a.opts.MaxCandidates {
		candidates = candidates[:a.opts.MaxCandidates]
	}

	if sel == types.SelectAll {
		return a.extractAll(ctx, part, candidates)
	}

	var notes []string
	for _, c := range candidates {
		fs, err := a.extract(ctx, c.Link)
		if err != nil {
			a.logger.Warn("distributor page failed", zap.String("part", part), zap.String("url", c.Link), zap.Error(err))
			notes = append(notes, "distributor page failed: "+c.Link)
			continue
		}
		if fs.HasData() {
			return []types.DistributorFieldSet{*fs}, notes
		}
	}
	return []types.DistributorFieldSet{}, append(notes, "no distributor fields found")
}

func (a *Aggregator) extractAll(ctx context.Context, part string, candidates []types.SearchResult) ([]types.DistributorFieldSet, []string) {
	sets := make([]*types.DistributorFieldSet, len(candidates))
	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxExtractConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			sets[i], errs[i] = a.extract(gctx, c.Link)
			return nil
		})
	}
	_ = g.Wait()

	out := []types.DistributorFieldSet{}
	var notes []string
	for i, fs := range sets {
		if errs[i] != nil {
			a.logger.Warn("distributor page failed", zap.String("part", part), zap.String("url", candidates[i].Link), zap.Error(errs[i]))
			notes = append(notes, "distributor page failed: "+candidates[i].Link)
			continue
		}
		if fs != nil {
			out = append(out, *fs)
		}
	}
	return out, notes
}

// datasheetCandidates lists datasheet hits followed by PDF links among the
// part search results, without duplicates, capped at limit.
func datasheetCandidates(datasheets, results []types.SearchResult, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(link string) {
		if link != "" && !seen[link] && len(out) < limit {
			seen[link] = true
			out = append(out, link)
		}
	}
	for _, r := range datasheets {
		add(r.Link)
	}
	for _, r := range results {
		if isPDFLink(r.Link) {
			add(r.Link)
		}
	}
	return out
}

func isPDFLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// enrichDatasheet returns the first candidate that yields text.
func (a *Aggregator) enrichDatasheet(ctx context.Context, candidates []string) (types.DatasheetExcerpt, bool) {
	for _, link := range candidates {
		callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		text := a.adapters.Datasheet.Extract(callCtx, link, a.opts.DatasheetMaxChars)
		cancel()
		if text != "" {
			return types.DatasheetExcerpt{SourceURL: link, Text: text}, true
		}
	}
	return types.DatasheetExcerpt{}, false
}
