// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ErnieAtLYD/rspai/internal/audit"
	"github.com/ErnieAtLYD/rspai/internal/privacy"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report on and archive privacy decisions over a vault",
	Long: `Audit scans a vault directory, running the exclusion decision and the
redaction pipeline over every markdown file, and reports the privacy
actions that scan produced. Use subcommands to print a report or to
archive the actions into a SQLite database with JSON/YAML export.`,
}

// --- report subcommand ---

var auditReportCmd = &cobra.Command{
	Use:   "report <vault-dir>",
	Short: "Print an aggregate report of privacy actions for a vault",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditReport,
}

func runAuditReport(cmd *cobra.Command, args []string) error {
	engine, log, err := newEngine()
	if err != nil {
		return err
	}

	if err := scanVault(engine, args[0]); err != nil {
		return err
	}

	opts, err := reportOptsFromFlags(cmd)
	if err != nil {
		return err
	}
	report := log.Report(opts)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(report.Summary())
	for kind, count := range report.CountsByKind {
		fmt.Printf("  %-18s %d\n", kind, count)
	}
	for _, path := range report.AffectedFiles {
		fmt.Printf("  affected: %s\n", path)
	}
	for _, a := range report.Actions {
		fmt.Printf("  %s  %-18s %s\n", a.Timestamp.Format(time.RFC3339), a.Kind, a.FilePath)
	}
	return nil
}

// --- export subcommand ---

var auditExportCmd = &cobra.Command{
	Use:   "export <vault-dir>",
	Short: "Archive privacy actions to SQLite and export them",
	Long: `Export scans a vault directory, archives every privacy action into a
SQLite database, and writes the archive out as YAML or JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditExport,
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	engine, log, err := newEngine()
	if err != nil {
		return err
	}

	if err := scanVault(engine, args[0]); err != nil {
		return err
	}

	dbPath, _ := cmd.Flags().GetString("db")
	store, err := audit.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	stored, err := store.Archive(ctx, log.All())
	if err != nil {
		return err
	}
	fmt.Printf("Archived %d action(s) to %s\n", stored, dbPath)

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if outPath == "" {
		outPath = "audit-export." + format
	}

	var query audit.QueryOptions
	switch format {
	case "yaml", "":
		err = store.ExportYAML(ctx, outPath, query)
	case "json":
		err = store.ExportJSON(ctx, outPath, query)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", outPath)
	return nil
}

// --- shared helpers ---

// scanVault runs the exclusion decision, and the redaction pipeline for
// files that survive it, over every markdown file under dir. The engine's
// audit log accumulates the resulting actions.
func scanVault(engine *privacy.Engine, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", path, err)
			return nil
		}

		content := string(data)
		if engine.ShouldExcludeFile(rel, content) {
			return nil
		}
		engine.FilterFile(rel, content)
		return nil
	})
}

func reportOptsFromFlags(cmd *cobra.Command) (audit.ReportOptions, error) {
	var opts audit.ReportOptions

	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		opts.Kinds = []types.ActionKind{types.ActionKind(kind)}
	}
	opts.IncludeActions, _ = cmd.Flags().GetBool("actions")
	opts.IncludeFileList, _ = cmd.Flags().GetBool("files")

	since, _ := cmd.Flags().GetString("since")
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return opts, fmt.Errorf("parsing --since: %w", err)
		}
		opts.From = t
	}
	until, _ := cmd.Flags().GetString("until")
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return opts, fmt.Errorf("parsing --until: %w", err)
		}
		opts.To = t
	}

	return opts, nil
}

func init() {
	auditReportCmd.Flags().String("kind", "", "filter by action kind: file_excluded, folder_excluded, section_redacted, content_redacted")
	auditReportCmd.Flags().String("since", "", "only actions at or after this RFC3339 timestamp")
	auditReportCmd.Flags().String("until", "", "only actions at or before this RFC3339 timestamp")
	auditReportCmd.Flags().Bool("actions", false, "include the full action listing")
	auditReportCmd.Flags().Bool("files", false, "include the sorted list of affected files")
	auditReportCmd.Flags().Bool("json", false, "output the report as JSON")

	auditExportCmd.Flags().String("db", "audit.db", "path of the SQLite audit archive")
	auditExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	auditExportCmd.Flags().StringP("output", "o", "", "export file path (default: audit-export.<format>)")

	auditCmd.AddCommand(auditReportCmd)
	auditCmd.AddCommand(auditExportCmd)

	rootCmd.AddCommand(auditCmd)
}
