// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package distributor reads named fields from the specification table of a
// distributor product page.
package distributor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/cases"

	"github.com/pdiddy/partfinder/internal/httputil"
	"github.com/pdiddy/partfinder/pkg/types"
)

// DefaultRowSelectors match the rows of the specification tables used by the
// supported distributors.
var DefaultRowSelectors = []string{
	`table[data-testid="product-details-specs"] tr`,
	`table.specs-table tr`,
}

// maxPageBytes caps the amount of HTML read from one page.
const maxPageBytes = 8 << 20

// Extractor fetches distributor pages and reads specification rows.
type Extractor struct {
	client       *http.Client
	userAgent    string
	rowSelectors []string
	logger       *zap.Logger
}

// New creates an Extractor. A nil logger discards output.
func New(client *http.Client, cfg types.DistributorConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	selectors := cfg.RowSelectors
	if len(selectors) == 0 {
		selectors = DefaultRowSelectors
	}
	return &Extractor{
		client:       client,
		userAgent:    cfg.UserAgent,
		rowSelectors: selectors,
		logger:       logger,
	}
}

// Extract fetches url and returns the requested fields. A non-success HTTP
// status yields (nil, nil): stale or redirected search hits are expected.
// Every requested label appears in the result; labels absent from the page
// hold types.NotFound. Transport and parse failures are returned as errors.
func (e *Extractor) Extract(ctx context.Context, url string, fieldNames []string) (*types.DistributorFieldSet, error) {
	resp, err := httputil.Get(ctx, e.client, url, e.userAgent, "text/html,application/xhtml+xml")
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			e.logger.Debug("distributor page unavailable", zap.String("url", url), zap.Int("status", se.StatusCode))
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	return &types.DistributorFieldSet{
		SourceURL: url,
		Fields:    ExtractFields(doc, e.rowSelectors, fieldNames),
	}, nil
}

// ExtractFields reads label/value rows matched by rowSelectors and returns a
// value for every requested name. A label matches a name only when both are
// equal after case folding and whitespace collapsing; the first matching row
// wins. Names without a matching row map to types.NotFound.
func ExtractFields(doc *goquery.Document, rowSelectors []string, fieldNames []string) map[string]string {
	wanted := make(map[string]string, len(fieldNames))
	fields := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		wanted[NormalizeLabel(name)] = name
		fields[name] = types.NotFound
	}

	found := make(map[string]bool, len(fieldNames))
	for _, sel := range rowSelectors {
		doc.Find(sel).Each(func(_ int, row *goquery.Selection) {
			label, value, ok := splitRow(row)
			if !ok {
				return
			}
			name, want := wanted[NormalizeLabel(label)]
			if !want || found[name] || value == "" {
				return
			}
			fields[name] = value
			found[name] = true
		})
	}
	return fields
}

// splitRow returns the label and value of a specification row. The label is
// the first th cell, or the first td when the row has no header cell; the
// value is the first td after the label.
func splitRow(row *goquery.Selection) (label, value string, ok bool) {
	cells := row.Find("td")
	if th := row.Find("th").First(); th.Length() > 0 {
		label = th.Text()
	} else {
		if cells.Length() < 2 {
			return "", "", false
		}
		label = cells.First().Text()
		cells = cells.Slice(1, cells.Length())
	}
	if cells.Length() == 0 {
		return "", "", false
	}
	return collapseSpace(label), collapseSpace(cells.First().Text()), true
}

// NormalizeLabel case-folds s and collapses runs of whitespace.
func NormalizeLabel(s string) string {
	return cases.Fold().String(collapseSpace(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
