// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comparisonMD = `## Overview

| Specification | LM317 | LM350 |
|---|---|---|
| Output current | 1.5 A | 3 A |
`

func TestRenderComparisonTables(t *testing.T) {
	out, err := New().Render(comparisonMD, KindComparison)
	require.NoError(t, err)

	assert.Contains(t, out, `<table class="comparison-table">`)
	assert.Contains(t, out, `<tr class="comparison-row">`)
	assert.Contains(t, out, `<td class="comparison-cell">1.5 A</td>`)
	assert.Contains(t, out, `<th class="comparison-header">LM317</th>`)
	assert.Contains(t, out, `<h2 id="overview">Overview</h2>`)
}

func TestRenderAlternativesLeavesTablesPlain(t *testing.T) {
	out, err := New().Render(comparisonMD, KindAlternatives)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "comparison-table")
}

func TestRenderSanitizes(t *testing.T) {
	md := "# Result\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(2)\" onclick=\"x()\">click</a>\n\n<img src=\"x.png\" onerror=\"steal()\">\n"
	out, err := New().Render(md, KindComparison)
	require.NoError(t, err)

	for _, bad := range []string{"<script", "alert(1)", "javascript:", "onclick", "onerror"} {
		assert.NotContains(t, out, bad)
	}
	assert.Contains(t, out, "click")
}

func TestRenderHardWraps(t *testing.T) {
	out, err := New().Render("line one\nline two", KindAlternatives)
	require.NoError(t, err)
	assert.Contains(t, out, "<br")
}

func TestRenderSeparatorsAndLists(t *testing.T) {
	md := "### 1. LM338\n- Package: TO-220\n\n---\n\n### 2. LM350\n- Package: TO-220\n"
	out, err := New().Render(md, KindAlternatives)
	require.NoError(t, err)
	assert.Contains(t, out, "<hr")
	assert.Equal(t, 2, strings.Count(out, "<li>"))
	assert.Contains(t, out, `id="1-lm338"`)
}

func TestRenderEmpty(t *testing.T) {
	out, err := New().Render("", KindComparison)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}
