// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up part numbers with a web search provider, restricted
// to known distributor and manufacturer domains.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/partfinder/pkg/types"
)

// maxProviderResults is the largest page any supported provider returns.
const maxProviderResults = 10

// ErrNotConfigured is returned when the provider's credentials are absent.
var ErrNotConfigured = errors.New("search provider not configured")

// ProviderError reports a non-success response from the search provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// Backend runs a raw query string against one search API. Each provider
// (Google Custom Search, SearXNG) implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, num int) ([]types.SearchResult, error)
}

// Query describes a domain-restricted part lookup.
type Query struct {
	// Part is the raw part identifier.
	Part string

	// Terms are extra words appended after the part (e.g. "datasheet").
	Terms []string

	// Domains restricts results to these sites. Empty means any site.
	Domains []string

	// FileType adds a filetype: filter (e.g. "pdf").
	FileType string

	// MaxResults caps the returned list.
	MaxResults int
}

// IsEmpty reports whether the query has no part to search for.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Part) == ""
}

// String renders the provider query: the part, extra terms, the filetype
// filter, then site: filters joined with OR.
func (q Query) String() string {
	parts := []string{strings.TrimSpace(q.Part)}
	parts = append(parts, q.Terms...)
	if q.FileType != "" {
		parts = append(parts, "filetype:"+q.FileType)
	}
	if len(q.Domains) > 0 {
		sites := make([]string, len(q.Domains))
		for i, d := range q.Domains {
			sites[i] = "site:" + d
		}
		parts = append(parts, strings.Join(sites, " OR "))
	}
	return strings.Join(parts, " ")
}

// Provider runs domain-restricted queries against a Backend.
type Provider struct {
	backend    Backend
	maxResults int
}

// NewProvider wraps backend. maxResults is the default cap for queries that
// do not set their own.
func NewProvider(backend Backend, maxResults int) *Provider {
	return &Provider{backend: backend, maxResults: maxResults}
}

// Name returns the backend name.
func (p *Provider) Name() string { return p.backend.Name() }

// Search runs q and returns at most q.MaxResults results (or the provider
// default) whose links fall under the hinted domains.
func (p *Provider) Search(ctx context.Context, q Query) ([]types.SearchResult, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = p.maxResults
	}
	return Run(ctx, p.backend, q)
}

// Run builds the query string, calls the backend once, filters the results to
// the hinted domains, and truncates them. There is no retry.
func Run(ctx context.Context, b Backend, q Query) ([]types.SearchResult, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("query is empty: provide a part number")
	}
	maxResults := q.MaxResults
	if maxResults <= 0 || maxResults > maxProviderResults {
		maxResults = maxProviderResults
	}

	results, err := b.Search(ctx, q.String(), maxProviderResults)
	if err != nil {
		return nil, err
	}

	results = FilterByDomains(results, q.Domains)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// FilterByDomains keeps results whose link host equals, or is a subdomain of,
// one of domains. With no domains every result with a parseable link is kept.
func FilterByDomains(results []types.SearchResult, domains []string) []types.SearchResult {
	filtered := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if MatchesDomain(r.Link, domains) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// MatchesDomain reports whether link is an http(s) URL under one of domains.
func MatchesDomain(link string, domains []string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if len(domains) == 0 {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "www."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// New returns the backend selected by cfg. Missing credentials are not an
// error here: the backend reports ErrNotConfigured when it is called, so
// optional enrichment degrades to empty results.
func New(cfg types.SearchConfig, client *http.Client) (Backend, error) {
	switch cfg.Provider {
	case types.SearchGoogle, "":
		return NewGoogleBackend(client, cfg), nil
	case types.SearchSearXNG:
		return &SearXNGBackend{Client: client, BaseURL: cfg.SearXNGURL, UserAgent: cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}
