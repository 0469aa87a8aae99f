// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PartContext is everything gathered for one part query. Empty slices are
// valid: they mean the corresponding adapter found nothing or failed.
type PartContext struct {
	// Query is the part identifier this context describes.
	Query PartQuery `json:"query" yaml:"query"`

	// SearchResults are the distributor-restricted search hits.
	SearchResults []SearchResult `json:"searchResults" yaml:"search_results"`

	// DatasheetResults are the hits of the datasheet (filetype) search.
	DatasheetResults []SearchResult `json:"datasheetResults,omitempty" yaml:"datasheet_results,omitempty"`

	// Distributor holds one field set per extracted candidate page.
	Distributor []DistributorFieldSet `json:"distributor" yaml:"distributor"`

	// Datasheets holds at most one excerpt per candidate document.
	Datasheets []DatasheetExcerpt `json:"datasheets" yaml:"datasheets"`

	// Specs is set when the parts database returned a record for the query.
	Specs *PartSpecs `json:"specs,omitempty" yaml:"specs,omitempty"`

	// Notes records adapters that degraded, in the order they ran.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// IsEmpty reports whether no adapter contributed any data.
func (c PartContext) IsEmpty() bool {
	return len(c.SearchResults) == 0 && len(c.DatasheetResults) == 0 &&
		len(c.Distributor) == 0 && len(c.Datasheets) == 0 && c.Specs == nil
}

// AggregatedContext is the bounded bundle handed to the prompt builder. Parts
// are kept in input order; two identical queries yield two sibling entries.
type AggregatedContext struct {
	Parts []PartContext `json:"parts" yaml:"parts"`
}

// For returns the first context gathered for q.
func (a AggregatedContext) For(q PartQuery) (PartContext, bool) {
	for _, p := range a.Parts {
		if p.Query == q {
			return p, true
		}
	}
	return PartContext{}, false
}
