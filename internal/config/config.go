// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the types.Config used by every component. Values come
// from, in decreasing precedence: bound command-line flags, PARTFINDER_*
// environment variables, the conventional unprefixed credential variables,
// the YAML config file, files in the secrets directory, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/partfinder/internal/datasheet"
	"github.com/pdiddy/partfinder/internal/distributor"
	"github.com/pdiddy/partfinder/internal/jobs"
	"github.com/pdiddy/partfinder/internal/prompt"
	"github.com/pdiddy/partfinder/internal/secrets"
	"github.com/pdiddy/partfinder/pkg/types"
)

const (
	EnvPrefix         = "PARTFINDER"
	FileName          = "partfinder"
	DefaultSecretsDir = ".secrets/"

	defaultUserAgent = "Mozilla/5.0 (compatible; partfinder/1.0)"
	defaultTimeout   = 10 * time.Second
)

// credentialEnv maps config keys to the unprefixed variables commonly used
// for the same credential.
var credentialEnv = map[string]string{
	"search.google_api_key":  "GOOGLE_API_KEY",
	"search.google_cx":       "GOOGLE_CX",
	"parts_db.token":         "NEXAR_API_KEY",
	"parts_db.client_id":     "NEXAR_CLIENT_ID",
	"parts_db.client_secret": "NEXAR_CLIENT_SECRET",
}

// generationKeyEnv names the unprefixed API key variable per provider.
var generationKeyEnv = map[types.GenerationProvider]string{
	types.ProviderOpenAI:    "OPENAI_API_KEY",
	types.ProviderAnthropic: "ANTHROPIC_API_KEY",
	types.ProviderGemini:    "GEMINI_API_KEY",
}

// Options locate the configuration sources.
type Options struct {
	// File is an explicit config file. When empty, partfinder.yaml is looked
	// up in the working directory and ~/.config/partfinder/.
	File string

	// SecretsDir holds one file per credential (default .secrets/).
	SecretsDir string

	Logger *zap.Logger
}

// New returns a viper instance with defaults and environment bindings.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
	return v
}

// SetDefaults registers every key. Keys must be known to viper for
// environment variables to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.allow_origin", "*")
	v.SetDefault("server.include_context", false)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("search.provider", string(types.SearchGoogle))
	v.SetDefault("search.timeout", defaultTimeout)
	v.SetDefault("search.user_agent", defaultUserAgent)
	v.SetDefault("search.google_api_key", "")
	v.SetDefault("search.google_cx", "")
	v.SetDefault("search.searxng_url", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.distributor_domains", []string{"digikey.com", "mouser.com"})
	v.SetDefault("search.datasheet_domains", []string{})
	v.SetDefault("search.rate_limit", 1.0)

	v.SetDefault("distributor.timeout", defaultTimeout)
	v.SetDefault("distributor.user_agent", defaultUserAgent)
	v.SetDefault("distributor.fields", types.DefaultDistributorFields)
	v.SetDefault("distributor.selection", string(types.SelectFirst))
	v.SetDefault("distributor.max_candidates", 5)
	v.SetDefault("distributor.row_selectors", distributor.DefaultRowSelectors)

	v.SetDefault("datasheet.timeout", 20*time.Second)
	v.SetDefault("datasheet.user_agent", defaultUserAgent)
	v.SetDefault("datasheet.enabled", false)
	v.SetDefault("datasheet.max_chars", datasheet.DefaultMaxChars)
	v.SetDefault("datasheet.max_candidates", 2)
	v.SetDefault("datasheet.max_bytes", datasheet.DefaultMaxBytes)
	v.SetDefault("datasheet.converter", string(types.ConverterNative))
	v.SetDefault("datasheet.container_image", datasheet.DefaultContainerImage)

	v.SetDefault("parts_db.timeout", defaultTimeout)
	v.SetDefault("parts_db.user_agent", "")
	v.SetDefault("parts_db.endpoint", "")
	v.SetDefault("parts_db.token", "")
	v.SetDefault("parts_db.client_id", "")
	v.SetDefault("parts_db.client_secret", "")
	v.SetDefault("parts_db.token_url", "")

	v.SetDefault("generation.provider", string(types.ProviderOpenAI))
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.max_retries", 3)
	v.SetDefault("generation.timeout", 2*time.Minute)
	v.SetDefault("generation.alternatives_max_tokens", 4000)
	v.SetDefault("generation.comparison_max_tokens", 2000)
	v.SetDefault("generation.comparison_temperature", 0.1)
	v.SetDefault("generation.policy", prompt.DefaultPolicy)

	v.SetDefault("aggregation.call_timeout", defaultTimeout)
	v.SetDefault("aggregation.prefer_parts_database", true)

	v.SetDefault("jobs.dsn", jobs.DefaultDSN)
	v.SetDefault("jobs.run_timeout", jobs.DefaultRunTimeout)
}

// Load reads the config file, decodes v into a Config, then fills empty
// credentials from the secrets directory.
func Load(v *viper.Viper, opts Options) (types.Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := readFile(v, opts.File); err != nil {
		return types.Config{}, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	if cfg.Generation.APIKey == "" {
		if env, ok := generationKeyEnv[cfg.Generation.Provider]; ok {
			cfg.Generation.APIKey = os.Getenv(env)
		}
	}

	dir := opts.SecretsDir
	if dir == "" {
		dir = DefaultSecretsDir
	}
	loaded, err := secrets.Load(dir, logger)
	if err != nil {
		return types.Config{}, err
	}
	if applied := secrets.Apply(&cfg, loaded); len(applied) > 0 {
		logger.Info("loaded secrets", zap.Strings("keys", applied))
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func readFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// Validate rejects enumerated settings with unknown values.
func Validate(cfg types.Config) error {
	switch cfg.Search.Provider {
	case types.SearchGoogle, types.SearchSearXNG:
	default:
		return fmt.Errorf("search.provider: unknown provider %q", cfg.Search.Provider)
	}
	switch cfg.Distributor.Selection {
	case types.SelectFirst, types.SelectAll:
	default:
		return fmt.Errorf("distributor.selection: must be %q or %q, got %q", types.SelectFirst, types.SelectAll, cfg.Distributor.Selection)
	}
	switch cfg.Datasheet.Converter {
	case types.ConverterNative, types.ConverterContainer:
	default:
		return fmt.Errorf("datasheet.converter: unknown converter %q", cfg.Datasheet.Converter)
	}
	if _, ok := generationKeyEnv[cfg.Generation.Provider]; !ok {
		return fmt.Errorf("generation.provider: unknown provider %q", cfg.Generation.Provider)
	}
	if cfg.Search.Provider == types.SearchSearXNG && cfg.Search.SearXNGURL == "" {
		return errors.New("search.searxng_url is required for the searxng provider")
	}
	return nil
}
