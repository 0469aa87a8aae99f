// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/partfinder/internal/prompt"
	"github.com/pdiddy/partfinder/pkg/types"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the reference data gathered for one or two parts",
	Long: `Context runs aggregation only and prints the result as YAML. No
generation call is made, so no generation API key is needed. With one
--part the alternatives plan is used; with two, the comparison plan.
Use --prompt to also print the prompt that would be sent.`,
	RunE: runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("part")
	if len(names) == 0 || len(names) > 2 {
		return fmt.Errorf("one or two --part values are required, got %d", len(names))
	}
	parts := make([]types.PartQuery, len(names))
	for i, n := range names {
		parts[i] = types.PartQuery(n)
	}
	kind := prompt.KindAlternatives
	if len(parts) == 2 {
		kind = prompt.KindComparison
	}

	svc, err := buildService(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	actx, err := svc.Context(cmd.Context(), parts, kind)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(actx); err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if showPrompt, _ := cmd.Flags().GetBool("prompt"); showPrompt {
		builder, err := prompt.NewBuilder(cfg.Generation.Policy)
		if err != nil {
			return err
		}
		p, err := builder.Build(kind, parts, actx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "---\n# system\n%s\n\n# user\n%s", p.System, p.User)
	}
	return nil
}

func init() {
	contextCmd.Flags().StringSlice("part", nil, "part number (repeat for a comparison)")
	contextCmd.Flags().Bool("prompt", false, "also print the prompt that would be sent")
	addPipelineFlags(contextCmd)

	rootCmd.AddCommand(contextCmd)
}
