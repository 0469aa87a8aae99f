// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate sends rendered prompts to a text-generation API and
// returns the model's markdown answer.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/partfinder/pkg/types"
)

// ErrEmptyOutput is returned when the API answers successfully but the
// answer carries no text.
var ErrEmptyOutput = errors.New("empty response from model")

// ErrNotConfigured is returned by New when no API key is set.
var ErrNotConfigured = errors.New("generation API key not configured")

// APIError is a non-success response from the generation API. Message holds
// the provider's error.message when present.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API returned %d", e.Provider, e.StatusCode)
}

// Request is one generation call.
type Request struct {
	System    string
	User      string
	MaxTokens int

	// Temperature is left to the provider default when nil.
	Temperature *float64
}

// Generator is a text-generation backend. Implementations are safe for
// concurrent use.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// New returns the backend selected by cfg.Provider. The model defaults per
// provider when cfg.Model is empty.
func New(ctx context.Context, cfg types.GenerationConfig, client *http.Client) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if client == nil {
		client = http.DefaultClient
	}
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return &OpenAIBackend{APIKey: cfg.APIKey, Model: orDefault(cfg.Model, defaultOpenAIModel), Client: client, MaxRetries: cfg.MaxRetries}, nil
	case types.ProviderAnthropic:
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: orDefault(cfg.Model, defaultClaudeModel), Client: client, MaxRetries: cfg.MaxRetries}, nil
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, orDefault(cfg.Model, defaultGeminiModel), client)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 { return &v }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
