// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NotFound is the placeholder stored for a requested distributor field whose
// label does not appear on the page. It is rendered as unconfirmed data.
const NotFound = "N/A"

// Distributor field labels recognized by the extractor. Labels are matched
// exactly (after case folding and whitespace collapsing) against the row
// headers of a distributor's specification table.
const (
	FieldPackageCase           = "Package / Case"
	FieldSupplierDevicePackage = "Supplier Device Package"
	FieldUnitPrice             = "Unit Price"
	FieldProductStatus         = "Product Status"
)

// DefaultDistributorFields lists the labels requested when configuration
// does not override them.
var DefaultDistributorFields = []string{
	FieldPackageCase,
	FieldSupplierDevicePackage,
	FieldUnitPrice,
	FieldProductStatus,
}

// DistributorFieldSet holds the fields scraped from one distributor page.
// Every requested label is present in Fields; labels that were not found
// hold NotFound.
type DistributorFieldSet struct {
	// SourceURL is the page the fields were read from.
	SourceURL string `json:"sourceUrl" yaml:"source_url"`

	// Fields maps a requested label to its value or NotFound.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// HasData reports whether at least one field holds a real value.
func (f *DistributorFieldSet) HasData() bool {
	if f == nil {
		return false
	}
	for _, v := range f.Fields {
		if v != "" && v != NotFound {
			return true
		}
	}
	return false
}

// Value returns the value stored for label, or NotFound.
func (f *DistributorFieldSet) Value(label string) string {
	if f == nil {
		return NotFound
	}
	if v, ok := f.Fields[label]; ok && v != "" {
		return v
	}
	return NotFound
}

// DatasheetExcerpt is a bounded prefix of a datasheet's plain text.
type DatasheetExcerpt struct {
	SourceURL string `json:"sourceUrl" yaml:"source_url"`
	Text      string `json:"text" yaml:"text"`
}

// SpecValue is a single attribute reported by the parts database.
type SpecValue struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// PartSpecs is the parts-database record for one manufacturer part number.
type PartSpecs struct {
	MPN          string      `json:"mpn" yaml:"mpn"`
	Manufacturer string      `json:"manufacturer" yaml:"manufacturer"`
	Specs        []SpecValue `json:"specs" yaml:"specs"`
}

// SpecMap returns the specs keyed by attribute name. When an attribute is
// repeated the first value wins.
func (p *PartSpecs) SpecMap() map[string]string {
	m := make(map[string]string, len(p.Specs))
	for _, s := range p.Specs {
		if s.Name == "" {
			continue
		}
		if _, ok := m[s.Name]; !ok {
			m[s.Name] = s.Value
		}
	}
	return m
}

// Similarity is an attribute on which two parts agree.
type Similarity struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
}

// Difference is an attribute on which two parts disagree or that only one
// part reports (the other side holds NotFound).
type Difference struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	PartA     string `json:"partA" yaml:"part_a"`
	PartB     string `json:"partB" yaml:"part_b"`
}
