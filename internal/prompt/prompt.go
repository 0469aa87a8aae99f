// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the system and user prompts for the two request
// kinds from an aggregated context and a named policy. Rendering is
// deterministic: the same inputs always yield byte-identical prompts.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/partfinder/internal/partsdb"
	"github.com/pdiddy/partfinder/pkg/types"
)

// Kind selects the prompt shape.
type Kind string

const (
	KindAlternatives Kind = "alternatives"
	KindComparison   Kind = "comparison"
)

// DefaultPolicy is used when configuration names none.
const DefaultPolicy = "standard"

//go:embed policies.yaml
var policiesYAML []byte

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Policy is a named set of generation instructions.
type Policy struct {
	Name               string   `yaml:"name"`
	AlternativeCount   int      `yaml:"alternative_count"`
	AlternativesSystem string   `yaml:"alternatives_system"`
	ComparisonSystem   string   `yaml:"comparison_system"`
	Rules              []string `yaml:"rules"`
	Ranking            []string `yaml:"ranking"`
}

type policyFile struct {
	Policies []Policy `yaml:"policies"`
}

// Policies returns the built-in policies keyed by name.
func Policies() (map[string]Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(policiesYAML, &pf); err != nil {
		return nil, fmt.Errorf("parsing policies: %w", err)
	}
	out := make(map[string]Policy, len(pf.Policies))
	for _, p := range pf.Policies {
		out[p.Name] = p
	}
	return out, nil
}

// Prompt is the rendered system and user message pair.
type Prompt struct {
	System string `json:"system" yaml:"system"`
	User   string `json:"user" yaml:"user"`
}

// Builder renders prompts under one policy.
type Builder struct {
	policy Policy
}

// NewBuilder returns a Builder for the named policy ("" selects standard).
func NewBuilder(policyName string) (*Builder, error) {
	if policyName == "" {
		policyName = DefaultPolicy
	}
	policies, err := Policies()
	if err != nil {
		return nil, err
	}
	p, ok := policies[policyName]
	if !ok {
		return nil, fmt.Errorf("unknown prompt policy %q", policyName)
	}
	return &Builder{policy: p}, nil
}

// Policy returns the active policy.
func (b *Builder) Policy() Policy { return b.policy }

type partView struct {
	Label   string
	Query   types.PartQuery
	Context types.PartContext
}

type comparisonView struct {
	Similarities []types.Similarity
	Differences  []types.Difference
}

type templateData struct {
	Policy     Policy
	Parts      []partView
	Comparison *comparisonView
}

// Build renders the prompt for kind. Alternatives take exactly one part and
// comparisons exactly two. Context for each part is looked up by position in
// actx; a missing entry renders as "no reference data".
func (b *Builder) Build(kind Kind, parts []types.PartQuery, actx types.AggregatedContext) (Prompt, error) {
	var system string
	switch kind {
	case KindAlternatives:
		if len(parts) != 1 {
			return Prompt{}, fmt.Errorf("alternatives prompt needs 1 part, got %d", len(parts))
		}
		system = b.policy.AlternativesSystem
	case KindComparison:
		if len(parts) != 2 {
			return Prompt{}, fmt.Errorf("comparison prompt needs 2 parts, got %d", len(parts))
		}
		system = b.policy.ComparisonSystem
	default:
		return Prompt{}, fmt.Errorf("unknown prompt kind %q", kind)
	}

	data := templateData{Policy: b.policy, Parts: make([]partView, len(parts))}
	for i, p := range parts {
		q := types.PartQuery(p.String())
		pc := types.PartContext{Query: q}
		if i < len(actx.Parts) {
			pc = actx.Parts[i]
		}
		data.Parts[i] = partView{Label: label(kind, i), Query: q, Context: pc}
	}
	if kind == KindComparison {
		data.Comparison = compareSpecs(data.Parts[0].Context.Specs, data.Parts[1].Context.Specs)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return Prompt{}, fmt.Errorf("rendering %s prompt: %w", kind, err)
	}
	return Prompt{System: system, User: strings.TrimSpace(buf.String()) + "\n"}, nil
}

func label(kind Kind, i int) string {
	if kind == KindAlternatives {
		return "the original part"
	}
	return "Part " + string(rune('A'+i))
}

func compareSpecs(a, b *types.PartSpecs) *comparisonView {
	if a == nil || b == nil {
		return nil
	}
	sims, diffs := partsdb.Compare(*a, *b)
	return &comparisonView{Similarities: sims, Differences: diffs}
}
