// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var alternativesCmd = &cobra.Command{
	Use:   "alternatives",
	Short: "Suggest replacement parts for a part number",
	Long: `Alternatives gathers distributor listings, datasheet text, and
parts-database records for a part, then asks the model for ranked drop-in
alternatives. The answer is printed as markdown, or as the full result with
--json.`,
	RunE: runAlternatives,
}

func runAlternatives(cmd *cobra.Command, args []string) error {
	part, _ := cmd.Flags().GetString("part")

	svc, err := buildService(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	res, err := svc.Alternatives(cmd.Context(), part)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(out, res)
	}

	fmt.Fprintln(out, res.Markdown)
	if len(res.PackageInfoList) > 0 {
		fmt.Fprintln(out, "\nDistributor listings:")
		for _, p := range res.PackageInfoList {
			fmt.Fprintf(out, "  %-12s  %s\n", p.PackageType, p.URL)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addPipelineFlags adds the flags shared by every command that runs the
// pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "generation provider: openai, anthropic, or gemini")
	cmd.Flags().String("model", "", "generation model identifier")
	cmd.Flags().String("policy", "", "prompt policy: standard or strict")
	cmd.Flags().String("search-provider", "", "search provider: google or searxng")
	cmd.Flags().String("selection", "", "distributor candidate selection: first or all")
	cmd.Flags().Bool("datasheet", false, "search for and read datasheet PDFs")
	cmd.Flags().String("converter", "", "datasheet converter: native or container")
}

func init() {
	alternativesCmd.Flags().String("part", "", "part number to find alternatives for")
	alternativesCmd.Flags().Bool("json", false, "output the full result as JSON")
	_ = alternativesCmd.MarkFlagRequired("part")
	addPipelineFlags(alternativesCmd)

	rootCmd.AddCommand(alternativesCmd)
}
