// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiBaseURL overrides the SDK endpoint when set. Package-level var for
// test substitution.
var geminiBaseURL = ""

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a genai client for the Gemini API backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiBackend, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if geminiBaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (g *GeminiBackend) Name() string { return "gemini" }

// Generate sends the user prompt with the system prompt as system instruction.
func (g *GeminiBackend) Generate(ctx context.Context, r Request) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if r.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if r.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*r.Temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(r.User), cfg)
	if err != nil {
		var ae genai.APIError
		if errors.As(err, &ae) {
			return "", &APIError{Provider: "Gemini", StatusCode: ae.Code, Message: ae.Message}
		}
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}
