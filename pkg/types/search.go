// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for the partfinder
// pipeline: part queries, the per-adapter records gathered for them, the
// aggregated context handed to the prompt builder, and configuration.
package types

import "strings"

// PartQuery is a user-supplied component identifier. It is opaque: any
// non-empty string is accepted and used verbatim in search queries and prompts.
type PartQuery string

// IsEmpty reports whether the query has no usable characters.
func (q PartQuery) IsEmpty() bool {
	return strings.TrimSpace(string(q)) == ""
}

// String returns the query with surrounding whitespace removed.
func (q PartQuery) String() string {
	return strings.TrimSpace(string(q))
}

// SearchResult is a single hit returned by a web search provider. Results are
// kept in the provider's relevance order.
type SearchResult struct {
	// Title is the page title as reported by the provider.
	Title string `json:"title" yaml:"title"`

	// Link is the absolute URL of the result.
	Link string `json:"link" yaml:"link"`

	// Snippet is the provider's text excerpt for the result.
	Snippet string `json:"snippet" yaml:"snippet"`
}
