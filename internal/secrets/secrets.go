// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: openai-api-key, anthropic-api-key, gemini-api-key,
// google-api-key, google-cx, nexar-token, nexar-client-id, nexar-client-secret.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/pkg/types"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies recognized secrets into cfg, filling only credentials that are
// still empty so explicit configuration wins. It returns the applied key
// names in sorted order.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	targets := map[string]*string{
		"google-api-key":      &cfg.Search.GoogleAPIKey,
		"google-cx":           &cfg.Search.GoogleCX,
		"nexar-token":         &cfg.PartsDB.Token,
		"nexar-client-id":     &cfg.PartsDB.ClientID,
		"nexar-client-secret": &cfg.PartsDB.ClientSecret,
	}
	// The generation key file must match the selected provider.
	switch cfg.Generation.Provider {
	case types.ProviderAnthropic:
		targets["anthropic-api-key"] = &cfg.Generation.APIKey
	case types.ProviderGemini:
		targets["gemini-api-key"] = &cfg.Generation.APIKey
	default:
		targets["openai-api-key"] = &cfg.Generation.APIKey
	}

	var applied []string
	for key, dst := range targets {
		v, ok := secrets[key]
		if !ok || *dst != "" {
			continue
		}
		*dst = v
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return applied
}
