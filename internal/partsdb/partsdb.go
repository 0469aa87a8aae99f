// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package partsdb queries the Nexar (Octopart) GraphQL API for structured
// part specifications and compares two parts attribute by attribute.
package partsdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/pdiddy/partfinder/internal/httputil"
	"github.com/pdiddy/partfinder/pkg/types"
)

// Package-level endpoints allow tests to substitute httptest servers.
var (
	nexarEndpoint = "https://api.nexar.com/graphql"
	nexarTokenURL = "https://identity.nexar.com/connect/token"
)

// ErrNotConfigured is returned by New when neither a token nor client
// credentials are present.
var ErrNotConfigured = errors.New("parts database not configured")

const mpnQuery = `query getParts($mpns: [String!]!) {
  supSearchMpn(q: { mpn_or_sku: $mpns }) {
    hits {
      mpn
      manufacturer { name }
      specs { attribute { name } display_value }
    }
  }
}`

// Client looks up parts by manufacturer part number.
type Client struct {
	http     *http.Client
	endpoint string
	logger   *zap.Logger
}

// New returns a client authenticated with cfg.Token, or with an OAuth2
// client-credentials grant when only ClientID and ClientSecret are set.
func New(ctx context.Context, cfg types.PartsDBConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := httputil.NewClient(cfg.HTTPConfig)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var hc *http.Client
	if cfg.Token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}))
	} else {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = nexarTokenURL
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"supply.domain"},
		}
		hc = cc.Client(ctx)
	}
	hc.Timeout = base.Timeout

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = nexarEndpoint
	}
	return &Client{http: hc, endpoint: endpoint, logger: logger}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		SupSearchMpn struct {
			Hits []hit `json:"hits"`
		} `json:"supSearchMpn"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type hit struct {
	MPN          string `json:"mpn"`
	Manufacturer struct {
		Name string `json:"name"`
	} `json:"manufacturer"`
	Specs []struct {
		Attribute struct {
			Name string `json:"name"`
		} `json:"attribute"`
		DisplayValue string `json:"display_value"`
	} `json:"specs"`
}

// Lookup returns the records found for mpns, keyed by the requested string.
// A requested part with no hit is absent from the map. Hits are matched to
// requests by case-insensitive MPN equality; the first matching hit wins.
func (c *Client) Lookup(ctx context.Context, mpns []string) (map[string]types.PartSpecs, error) {
	body, err := json.Marshal(graphqlRequest{Query: mpnQuery, Variables: map[string]any{"mpns": mpns}})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("nexar request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nexar returned HTTP %d: %s", resp.StatusCode, snippet(respBody))
	}

	var gr graphqlResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return nil, fmt.Errorf("nexar query failed: %s", gr.Errors[0].Message)
	}

	out := make(map[string]types.PartSpecs, len(mpns))
	for _, want := range mpns {
		if _, done := out[want]; done {
			continue
		}
		for _, h := range gr.Data.SupSearchMpn.Hits {
			if strings.EqualFold(strings.TrimSpace(h.MPN), strings.TrimSpace(want)) {
				out[want] = toPartSpecs(h)
				break
			}
		}
	}
	c.logger.Debug("nexar lookup",
		zap.Strings("mpns", mpns),
		zap.Int("hits", len(gr.Data.SupSearchMpn.Hits)),
		zap.Int("matched", len(out)),
	)
	return out, nil
}

func toPartSpecs(h hit) types.PartSpecs {
	ps := types.PartSpecs{MPN: h.MPN, Manufacturer: h.Manufacturer.Name}
	if ps.Manufacturer == "" {
		ps.Manufacturer = "Unknown"
	}
	for _, s := range h.Specs {
		if s.Attribute.Name == "" {
			continue
		}
		ps.Specs = append(ps.Specs, types.SpecValue{Name: s.Attribute.Name, Value: s.DisplayValue})
	}
	return ps
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// Compare splits the union of both parts' attributes into similarities
// (both present and equal) and differences (unequal, or reported by one part
// only, with types.NotFound on the missing side). Attributes are listed in
// a's order followed by those only b reports.
func Compare(a, b types.PartSpecs) ([]types.Similarity, []types.Difference) {
	specsA, specsB := a.SpecMap(), b.SpecMap()

	var keys []string
	seen := make(map[string]bool)
	for _, list := range [][]types.SpecValue{a.Specs, b.Specs} {
		for _, s := range list {
			if s.Name != "" && !seen[s.Name] {
				seen[s.Name] = true
				keys = append(keys, s.Name)
			}
		}
	}

	var sims []types.Similarity
	var diffs []types.Difference
	for _, k := range keys {
		va, vb := specsA[k], specsB[k]
		switch {
		case va != "" && vb != "" && va == vb:
			sims = append(sims, types.Similarity{Attribute: k, Value: va})
		default:
			diffs = append(diffs, types.Difference{Attribute: k, PartA: orNotFound(va), PartB: orNotFound(vb)})
		}
	}
	return sims, diffs
}

func orNotFound(v string) string {
	if v == "" {
		return types.NotFound
	}
	return v
}
