// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchProvider identifies the web search backend.
type SearchProvider string

const (
	SearchGoogle  SearchProvider = "google"
	SearchSearXNG SearchProvider = "searxng"
)

// SearchConfig holds settings for the search adapter.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the search backend: google or searxng.
	Provider SearchProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// GoogleAPIKey and GoogleCX authenticate the Google Custom Search API.
	GoogleAPIKey string `json:"google_api_key,omitempty" yaml:"google_api_key,omitempty" mapstructure:"google_api_key"`
	GoogleCX     string `json:"google_cx,omitempty" yaml:"google_cx,omitempty" mapstructure:"google_cx"`

	// SearXNGURL is the base URL of a SearXNG instance.
	SearXNGURL string `json:"searxng_url,omitempty" yaml:"searxng_url,omitempty" mapstructure:"searxng_url"`

	// MaxResults caps the results kept per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// DistributorDomains restricts the part search to distributor sites.
	DistributorDomains []string `json:"distributor_domains" yaml:"distributor_domains" mapstructure:"distributor_domains"`

	// DatasheetDomains restricts the datasheet search. Empty means any site.
	DatasheetDomains []string `json:"datasheet_domains" yaml:"datasheet_domains" mapstructure:"datasheet_domains"`

	// RateLimit is the maximum number of provider requests per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Selection is the candidate selection policy for distributor enrichment.
type Selection string

const (
	// SelectFirst scans candidates in order and stops at the first page that
	// yields at least one field.
	SelectFirst Selection = "first"

	// SelectAll extracts every retained candidate.
	SelectAll Selection = "all"
)

// DistributorConfig holds settings for the distributor page extractor.
type DistributorConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Fields are the specification-table labels to extract.
	Fields []string `json:"fields" yaml:"fields" mapstructure:"fields"`

	// Selection is first (default) or all.
	Selection Selection `json:"selection" yaml:"selection" mapstructure:"selection"`

	// MaxCandidates caps the number of pages fetched per part (default 5).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// RowSelectors are goquery selectors for specification table rows.
	RowSelectors []string `json:"row_selectors" yaml:"row_selectors" mapstructure:"row_selectors"`
}

// ConverterKind selects the PDF-to-text backend.
type ConverterKind string

const (
	ConverterNative    ConverterKind = "native"
	ConverterContainer ConverterKind = "container"
)

// DatasheetConfig holds settings for the datasheet text extractor.
type DatasheetConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled turns on datasheet search and extraction.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// MaxChars bounds the excerpt length in characters (default 4000).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// MaxCandidates caps the documents tried per part (default 2).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// MaxBytes caps the downloaded document size (default 20 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" mapstructure:"max_bytes"`

	// Converter is native (default) or container.
	Converter ConverterKind `json:"converter" yaml:"converter" mapstructure:"converter"`

	// ContainerImage is the pdftotext image used by the container converter.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`
}

// PartsDBConfig holds settings for the Nexar parts database.
type PartsDBConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the GraphQL endpoint.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Token is a pre-issued bearer token. It takes precedence over client credentials.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// ClientID and ClientSecret are OAuth2 client credentials.
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" mapstructure:"client_secret"`

	// TokenURL is the OAuth2 token endpoint.
	TokenURL string `json:"token_url" yaml:"token_url" mapstructure:"token_url"`
}

// Configured reports whether any credential is present.
func (c PartsDBConfig) Configured() bool {
	return c.Token != "" || (c.ClientID != "" && c.ClientSecret != "")
}

// GenerationProvider identifies the text-generation API.
type GenerationProvider string

const (
	ProviderOpenAI    GenerationProvider = "openai"
	ProviderAnthropic GenerationProvider = "anthropic"
	ProviderGemini    GenerationProvider = "gemini"
)

// AIConfig holds shared settings for calls to a generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the selected provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GenerationConfig holds settings for the generation client.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Provider is openai (default), anthropic, or gemini.
	Provider GenerationProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// AlternativesMaxTokens and ComparisonMaxTokens bound the output length.
	AlternativesMaxTokens int `json:"alternatives_max_tokens" yaml:"alternatives_max_tokens" mapstructure:"alternatives_max_tokens"`
	ComparisonMaxTokens   int `json:"comparison_max_tokens" yaml:"comparison_max_tokens" mapstructure:"comparison_max_tokens"`

	// ComparisonTemperature is the sampling temperature for comparisons.
	ComparisonTemperature float64 `json:"comparison_temperature" yaml:"comparison_temperature" mapstructure:"comparison_temperature"`

	// Policy names the prompt policy: standard or strict.
	Policy string `json:"policy" yaml:"policy" mapstructure:"policy"`
}

// AggregationConfig holds settings for the context aggregator.
type AggregationConfig struct {
	// CallTimeout bounds every adapter call (default 10s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout" mapstructure:"call_timeout"`

	// PreferPartsDatabase uses the parts database for comparisons when it is configured.
	PreferPartsDatabase bool `json:"prefer_parts_database" yaml:"prefer_parts_database" mapstructure:"prefer_parts_database"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":3000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigin is the Access-Control-Allow-Origin value (default "*").
	AllowOrigin string `json:"allow_origin" yaml:"allow_origin" mapstructure:"allow_origin"`

	// IncludeContext adds the aggregated context to successful responses.
	IncludeContext bool `json:"include_context" yaml:"include_context" mapstructure:"include_context"`

	// MaxBodyBytes caps request bodies (default 1 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// JobsConfig holds settings for asynchronous jobs.
type JobsConfig struct {
	// DSN is the SQLite data source (default in-memory).
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`

	// RunTimeout bounds one background run (default 3m).
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout" mapstructure:"run_timeout"`
}

// Config groups all component configurations. It is built once at start-up
// and passed into constructors.
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
	Search      SearchConfig      `json:"search" yaml:"search" mapstructure:"search"`
	Distributor DistributorConfig `json:"distributor" yaml:"distributor" mapstructure:"distributor"`
	Datasheet   DatasheetConfig   `json:"datasheet" yaml:"datasheet" mapstructure:"datasheet"`
	PartsDB     PartsDBConfig     `json:"parts_db" yaml:"parts_db" mapstructure:"parts_db"`
	Generation  GenerationConfig  `json:"generation" yaml:"generation" mapstructure:"generation"`
	Aggregation AggregationConfig `json:"aggregation" yaml:"aggregation" mapstructure:"aggregation"`
	Jobs        JobsConfig        `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}
