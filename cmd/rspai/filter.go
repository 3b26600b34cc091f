// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ErnieAtLYD/rspai/internal/perf"
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Redact private content from a file or stdin",
	Long: `Filter applies the redaction pipeline to one file (or stdin when no
file is given) and writes the redacted content to stdout or --output.
Excluded files produce no output at all: exclusion means nothing
leaves the engine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

func runFilter(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine()
	if err != nil {
		return err
	}

	var (
		path    string
		content []byte
	)
	if len(args) == 1 {
		path = args[0]
		content, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	if path != "" && engine.ShouldExcludeFile(path, string(content)) {
		return fmt.Errorf("%s is excluded from analysis; refusing to emit content", path)
	}

	var filtered string
	if optimized, _ := cmd.Flags().GetBool("optimized"); optimized {
		opt := perf.NewOptimizer(engine)
		filtered = opt.FilterContentOptimized(path, string(content))
	} else {
		filtered = engine.FilterFile(path, string(content))
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		fmt.Print(filtered)
		return nil
	}
	return os.WriteFile(outPath, []byte(filtered), 0o644)
}

func init() {
	filterCmd.Flags().StringP("output", "o", "", "write redacted content to this file instead of stdout")
	filterCmd.Flags().Bool("optimized", false, "route through the caching performance layer")

	rootCmd.AddCommand(filterCmd)
}
