// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the partfinder CLI and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/partfinder/internal/config"
	"github.com/pdiddy/partfinder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	v      = config.New()
	cfg    types.Config
	logger = zap.NewNop()
)

// flagKeys binds command flags to configuration keys. A flag only overrides
// the key when it is set on the command line.
var flagKeys = map[string]string{
	"addr":            "server.addr",
	"include-context": "server.include_context",
	"provider":        "generation.provider",
	"model":           "generation.model",
	"policy":          "generation.policy",
	"search-provider": "search.provider",
	"selection":       "distributor.selection",
	"datasheet":       "datasheet.enabled",
	"converter":       "datasheet.converter",
	"jobs-dsn":        "jobs.dsn",
}

var rootCmd = &cobra.Command{
	Use:   "partfinder",
	Short: "Suggest alternatives for electronic parts and compare two parts",
	Long: `partfinder grounds a language model in live reference data before asking
it about electronic components. For each part it searches distributor sites,
reads specification tables and datasheets, and consults the parts database,
then asks the model for drop-in alternatives or a side-by-side comparison.

Run "partfinder serve" for the HTTP API, or use the alternatives, compare,
and context commands directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		dev, _ := cmd.Flags().GetBool("dev")

		zc := zap.NewProductionConfig()
		if dev {
			zc = zap.NewDevelopmentConfig()
		}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l

		if cmd == versionCmd {
			return nil
		}

		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		cfg, err = config.Load(v, config.Options{File: cfgFile, SecretsDir: secretsDir, Logger: logger})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./partfinder.yaml or ~/.config/partfinder/partfinder.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", config.DefaultSecretsDir, "directory of credential files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().Bool("dev", false, "human-readable development logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
