// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/pdiddy/partfinder/pkg/types"
)

// googleSearchBase is the Custom Search JSON API endpoint. Declared as a var
// so tests can substitute an httptest server.
var googleSearchBase = "https://www.googleapis.com/customsearch/v1"

// GoogleBackend queries the Google Custom Search JSON API.
type GoogleBackend struct {
	Client    *http.Client
	APIKey    string
	CX        string
	UserAgent string

	limiter *rate.Limiter
}

// NewGoogleBackend creates a backend that issues at most cfg.RateLimit
// requests per second (unlimited when zero).
func NewGoogleBackend(client *http.Client, cfg types.SearchConfig) *GoogleBackend {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &GoogleBackend{
		Client:    client,
		APIKey:    cfg.GoogleAPIKey,
		CX:        cfg.GoogleCX,
		UserAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Name returns the backend identifier.
func (b *GoogleBackend) Name() string { return "google" }

// Search runs query and returns up to num items.
func (b *GoogleBackend) Search(ctx context.Context, query string, num int) ([]types.SearchResult, error) {
	if b.APIKey == "" || b.CX == "" {
		return nil, ErrNotConfigured
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for search quota: %w", err)
		}
	}
	if num <= 0 || num > maxProviderResults {
		num = maxProviderResults
	}

	params := url.Values{
		"key": {b.APIKey},
		"cx":  {b.CX},
		"q":   {query},
		"num": {strconv.Itoa(num)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var gErr googleResponse
		msg := ""
		if json.Unmarshal(body, &gErr) == nil && gErr.Error != nil {
			msg = gErr.Error.Message
		}
		return nil, &ProviderError{Provider: b.Name(), StatusCode: resp.StatusCode, Message: msg}
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("parsing google response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(gr.Items))
	for _, item := range gr.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, types.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// Custom Search JSON structures.
type googleResponse struct {
	Items []googleItem   `json:"items"`
	Error *googleAPIError `json:"error,omitempty"`
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
