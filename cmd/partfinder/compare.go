// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/partfinder/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two parts side by side",
	Long: `Compare gathers reference data for two parts and asks the model for an
engineering comparison covering electrical specifications, package and
footprint, and drop-in compatibility. When both parts are in the parts
database, shared and differing attributes are listed as well and can be
exported to an Excel workbook with --xlsx.`,
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, _ := cmd.Flags().GetString("a")
	b, _ := cmd.Flags().GetString("b")

	svc, err := buildService(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	res, err := svc.Compare(cmd.Context(), a, b)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := report.WriteComparison(f, a, b, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(out, res)
	}

	fmt.Fprintln(out, res.Markdown)
	if len(res.Similarities) > 0 || len(res.Differences) > 0 {
		fmt.Fprintf(out, "\nParts database: %d shared, %d differing attributes\n", len(res.Similarities), len(res.Differences))
		for _, d := range res.Differences {
			fmt.Fprintf(out, "  %-30s  %-20s  %s\n", d.Attribute, d.PartA, d.PartB)
		}
	}
	return nil
}

func init() {
	compareCmd.Flags().String("a", "", "first part number")
	compareCmd.Flags().String("b", "", "second part number")
	compareCmd.Flags().Bool("json", false, "output the full result as JSON")
	compareCmd.Flags().String("xlsx", "", "also write the comparison to this Excel file")
	_ = compareCmd.MarkFlagRequired("a")
	_ = compareCmd.MarkFlagRequired("b")
	addPipelineFlags(compareCmd)

	rootCmd.AddCommand(compareCmd)
}
