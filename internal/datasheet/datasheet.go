// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package datasheet downloads part datasheets and returns a bounded excerpt
// of their plain text.
package datasheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/internal/httputil"
	"github.com/pdiddy/partfinder/pkg/types"
)

const (
	// DefaultMaxChars bounds an excerpt when configuration leaves it unset.
	DefaultMaxChars = 4000

	// DefaultMaxBytes caps a datasheet download.
	DefaultMaxBytes = 20 << 20

	mimePDF = "application/pdf"
)

// Converter turns PDF bytes into plain text.
type Converter interface {
	Name() string
	Convert(ctx context.Context, pdf []byte) (string, error)
}

// Extractor fetches datasheets and converts them to text.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	converter Converter
	logger    *zap.Logger
}

// New creates an Extractor using conv for PDF conversion. A nil conv uses
// NativeConverter; a nil logger discards output.
func New(client *http.Client, cfg types.DatasheetConfig, conv Converter, logger *zap.Logger) *Extractor {
	if conv == nil {
		conv = NativeConverter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		converter: conv,
		logger:    logger,
	}
}

// Extract downloads url and returns at most maxChars characters of its text
// with whitespace collapsed. Every failure (HTTP, size, not a PDF, conversion)
// yields "" and a warning.
func (e *Extractor) Extract(ctx context.Context, url string, maxChars int) string {
	text, err := e.extract(ctx, url)
	if err != nil {
		e.logger.Warn("datasheet extraction failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return Truncate(text, maxChars)
}

func (e *Extractor) extract(ctx context.Context, url string) (string, error) {
	resp, err := httputil.Get(ctx, e.client, url, e.userAgent, "application/pdf,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("document exceeds %d bytes", e.maxBytes)
	}

	if mt := mimetype.Detect(data); !mt.Is(mimePDF) {
		return "", fmt.Errorf("unsupported document type %s", mt.String())
	}

	text, err := e.converter.Convert(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%s conversion: %w", e.converter.Name(), err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// Truncate returns the first maxChars runes of s. A non-positive maxChars
// yields "".
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
