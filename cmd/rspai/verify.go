// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ErnieAtLYD/rspai/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <original> <redacted>",
	Short: "Prove a redacted file leaks nothing from its original",
	Long: `Verify re-scans a redacted file against its original: no marker may
survive, no private block or heading content may remain, and the
output must not be structurally corrupted. Violations are reported,
never thrown; the exit status is 1 when any violation is found.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	original, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	redacted, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	checker, err := verify.NewChecker(privacyConfig())
	if err != nil {
		return err
	}

	report := checker.Verify(string(original), string(redacted))
	fmt.Println(report.Summary)
	for _, violation := range report.Violations {
		fmt.Printf("  - %s\n", violation)
	}

	if !report.IsValid {
		os.Exit(1)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
