// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/partfinder/pkg/types"
)

// SearXNGBackend queries a self-hosted SearXNG instance. SearXNG does not
// honor site: filters reliably across engines, so domain restriction relies
// on the post-hoc filter in Run.
type SearXNGBackend struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// Name returns the backend identifier.
func (b *SearXNGBackend) Name() string { return "searxng" }

// Search runs query against /search with JSON output. The whole first page
// is returned regardless of num so domain filtering sees every hit.
func (b *SearXNGBackend) Search(ctx context.Context, query string, _ int) ([]types.SearchResult, error) {
	if b.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
	}
	reqURL := strings.TrimRight(b.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	// SearXNG bot detection rejects requests without a forwarded address.
	req.Header.Set("X-Real-IP", "127.0.0.1")
	req.Header.Set("X-Forwarded-For", "127.0.0.1")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: b.Name(), StatusCode: resp.StatusCode}
	}

	var sr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing searxng response: %w", err)
	}

	var results []types.SearchResult
	for _, r := range sr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.SearchResult{Title: r.Title, Link: r.URL, Snippet: r.Content})
	}
	return results, nil
}

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}
