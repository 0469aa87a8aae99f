// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package distributor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/partfinder/pkg/types"
)

const digikeyPage = `<!doctype html>
<html><body>
<table data-testid="product-details-specs">
  <tr><th>Category</th><td>Power Management (PMIC)</td></tr>
  <tr><th>  Package /   Case </th><td> TO-220-3 </td></tr>
  <tr><th>Supplier Device Package</th><td>TO-220</td></tr>
  <tr><th>Product Status</th><td>Active</td></tr>
  <tr><th>Package / Case Style</th><td>should not match</td></tr>
</table>
</body></html>`

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractFields(t *testing.T) {
	doc := newDoc(t, digikeyPage)
	got := ExtractFields(doc, DefaultRowSelectors, types.DefaultDistributorFields)

	assert.Equal(t, map[string]string{
		types.FieldPackageCase:           "TO-220-3",
		types.FieldSupplierDevicePackage: "TO-220",
		types.FieldUnitPrice:             types.NotFound,
		types.FieldProductStatus:         "Active",
	}, got)
}

func TestExtractFieldsExactLabelOnly(t *testing.T) {
	doc := newDoc(t, `<table data-testid="product-details-specs">
		<tr><th>Package</th><td>DIP-8</td></tr>
		<tr><th>Package / Case (mm)</th><td>9.8 x 6.4</td></tr>
	</table>`)

	got := ExtractFields(doc, DefaultRowSelectors, []string{types.FieldPackageCase})
	assert.Equal(t, types.NotFound, got[types.FieldPackageCase], "partial label matches must not be used")
}

func TestExtractFieldsCaseInsensitive(t *testing.T) {
	doc := newDoc(t, `<table data-testid="product-details-specs">
		<tr><th>PACKAGE / CASE</th><td>SOIC-8</td></tr>
	</table>`)

	got := ExtractFields(doc, DefaultRowSelectors, []string{types.FieldPackageCase})
	assert.Equal(t, "SOIC-8", got[types.FieldPackageCase])
}

func TestExtractFieldsTdLabels(t *testing.T) {
	doc := newDoc(t, `<table class="specs-table">
		<tr><td>Package / Case</td><td>SOT-23-5</td></tr>
		<tr><td>lonely cell</td></tr>
	</table>`)

	got := ExtractFields(doc, DefaultRowSelectors, []string{types.FieldPackageCase})
	assert.Equal(t, "SOT-23-5", got[types.FieldPackageCase])
}

func TestExtractFieldsNoTable(t *testing.T) {
	doc := newDoc(t, `<p>Access denied</p>`)
	got := ExtractFields(doc, DefaultRowSelectors, types.DefaultDistributorFields)

	require.Len(t, got, len(types.DefaultDistributorFields))
	for _, name := range types.DefaultDistributorFields {
		assert.Equal(t, types.NotFound, got[name], name)
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, NormalizeLabel("Package / Case"), NormalizeLabel("  package  /\tCASE\n"))
	assert.NotEqual(t, NormalizeLabel("Package / Case"), NormalizeLabel("Package/Case"))
}

func TestExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lm317":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(digikeyPage))
		case "/moved":
			w.WriteHeader(http.StatusGone)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	e := New(ts.Client(), types.DistributorConfig{HTTPConfig: types.HTTPConfig{UserAgent: "partfinder/test"}}, zaptest.NewLogger(t))

	t.Run("fields extracted", func(t *testing.T) {
		fs, err := e.Extract(context.Background(), ts.URL+"/lm317", []string{types.FieldPackageCase, types.FieldUnitPrice})
		require.NoError(t, err)
		require.NotNil(t, fs)
		assert.Equal(t, ts.URL+"/lm317", fs.SourceURL)
		assert.Equal(t, "TO-220-3", fs.Value(types.FieldPackageCase))
		assert.Equal(t, types.NotFound, fs.Fields[types.FieldUnitPrice])
		assert.True(t, fs.HasData())
	})

	t.Run("unavailable page is not an error", func(t *testing.T) {
		fs, err := e.Extract(context.Background(), ts.URL+"/moved", types.DefaultDistributorFields)
		assert.NoError(t, err)
		assert.Nil(t, fs)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		fs, err := e.Extract(context.Background(), "http://127.0.0.1:1/x", types.DefaultDistributorFields)
		assert.Error(t, err)
		assert.Nil(t, fs)
	})
}

func TestExtractLatin1Page(t *testing.T) {
	// "Ø" encoded as ISO-8859-1 (0xD8).
	page := []byte("<table data-testid=\"product-details-specs\"><tr><th>Package / Case</th><td>\xd8 5mm</td></tr></table>")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write(page)
	}))
	defer ts.Close()

	e := New(ts.Client(), types.DistributorConfig{}, nil)
	fs, err := e.Extract(context.Background(), ts.URL, []string{types.FieldPackageCase})
	require.NoError(t, err)
	assert.Equal(t, "Ø 5mm", fs.Value(types.FieldPackageCase))
}
