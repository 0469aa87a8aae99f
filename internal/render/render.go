// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render converts generated markdown into sanitized HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Kind selects kind-specific decoration.
type Kind string

const (
	KindAlternatives Kind = "alternatives"
	KindComparison   Kind = "comparison"
)

// Classes added to comparison tables so the front end can style them.
const (
	ClassTable  = "comparison-table"
	ClassRow    = "comparison-row"
	ClassCell   = "comparison-cell"
	ClassHeader = "comparison-header"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer for GitHub-flavored markdown with hard line breaks
// and heading ids. Raw HTML in the markdown is passed through and then
// sanitized.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").OnElements("table", "tr", "td", "th")
	policy.AllowAttrs("align").OnElements("td", "th")

	return &Renderer{md: md, policy: policy}
}

// Render converts markdown to sanitized HTML. Scripts, event handlers, and
// javascript: URLs are removed. Comparison output gets table classes.
func (r *Renderer) Render(markdown string, kind Kind) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	out := r.policy.Sanitize(buf.String())

	if kind == KindComparison {
		decorated, err := decorateTables(out)
		if err != nil {
			return "", err
		}
		out = decorated
	}
	return out, nil
}

// decorateTables adds the comparison classes to every table element.
func decorateTables(fragment string) (string, error) {
	if !strings.Contains(fragment, "<table") {
		return fragment, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return "", fmt.Errorf("parsing rendered HTML: %w", err)
	}
	doc.Find("table").AddClass(ClassTable)
	doc.Find("tr").AddClass(ClassRow)
	doc.Find("td").AddClass(ClassCell)
	doc.Find("th").AddClass(ClassHeader)

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing HTML: %w", err)
	}
	return out, nil
}
