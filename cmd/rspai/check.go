// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Decide whether files may be analyzed at all",
	Long: `Check runs the exclusion decision for each file: a file inside an
excluded folder, or whose content contains an exclusion marker, is
reported as excluded and must never reach the analysis pipeline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, log, err := newEngine()
	if err != nil {
		return err
	}

	excluded := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", path, err)
			continue
		}

		if engine.ShouldExcludeFile(path, string(data)) {
			excluded++
			reason := "contains privacy markers"
			actions := log.ByFile(path)
			if len(actions) > 0 && actions[len(actions)-1].Kind == types.ActionFolderExcluded {
				reason = "in excluded folder " + actions[len(actions)-1].Metadata["folder"]
			}
			fmt.Printf("excluded  %s (%s)\n", path, reason)
		} else {
			fmt.Printf("ok        %s\n", path)
		}
	}

	fmt.Printf("\n%d of %d file(s) excluded\n", excluded, len(args))
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
