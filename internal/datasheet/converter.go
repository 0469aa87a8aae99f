// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package datasheet

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/partfinder/internal/container"
	"github.com/pdiddy/partfinder/pkg/types"
)

// DefaultContainerImage runs poppler's pdftotext as its entrypoint.
const DefaultContainerImage = "pdftotext:latest"

// NativeConverter extracts text in-process.
type NativeConverter struct{}

func (NativeConverter) Name() string { return "native" }

// Convert parses data and returns the text of every page. The parser panics
// on some malformed documents; those panics are returned as errors.
func (NativeConverter) Convert(_ context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(out), nil
}

// ContainerConverter pipes the PDF through a pdftotext container.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter verifies that image is present in rt.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultContainerImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

func (c *ContainerConverter) Name() string { return "container" }

// Convert runs "pdftotext - -" inside the container.
func (c *ContainerConverter) Convert(ctx context.Context, data []byte) (string, error) {
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, []string{"-", "-"}, bytes.NewReader(data), &out); err != nil {
		return "", err
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output")
	}
	return out.String(), nil
}

// NewConverter returns the converter selected by cfg.Converter. The
// container converter detects docker or podman.
func NewConverter(ctx context.Context, cfg types.DatasheetConfig) (Converter, error) {
	switch cfg.Converter {
	case types.ConverterNative, "":
		return NativeConverter{}, nil
	case types.ConverterContainer:
		rt, err := container.Detect(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(ctx, rt, cfg.ContainerImage)
	default:
		return nil, fmt.Errorf("unknown datasheet converter %q", cfg.Converter)
	}
}
