// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rspai CLI, the host-side surface
// of the privacy enforcement engine. Each engine operation is a subcommand:
// check, filter, verify, and audit.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ErnieAtLYD/rspai/internal/audit"
	"github.com/ErnieAtLYD/rspai/internal/privacy"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the rspai CLI.
var rootCmd = &cobra.Command{
	Use:   "rspai",
	Short: "Privacy enforcement for personal knowledge base analysis",
	Long: `rspai decides which notes may be analyzed at all, redacts content
marked private before it reaches any analysis stage, verifies that
redaction actually worked, and keeps an auditable trail of every
privacy-relevant decision.

Exclusion markers (for example #private) match as whole tokens; excluded
folders match as complete path segments. Nothing excluded or redacted by
the engine ever leaves it.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./rspai.yaml or ~/.config/rspai/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rspai")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rspai"))
		}
	}

	viper.SetEnvPrefix("RSPAI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// privacyConfig builds the engine configuration from defaults overlaid
// with whatever the config file or environment provides.
func privacyConfig() types.PrivacyConfig {
	cfg := types.DefaultPrivacyConfig()

	if v := viper.GetStringSlice("privacy.exclusion_markers"); len(v) > 0 {
		cfg.ExclusionMarkers = v
	}
	if v := viper.GetStringSlice("privacy.excluded_folders"); len(v) > 0 {
		cfg.ExcludedFolders = v
	}
	if viper.IsSet("privacy.section_redaction_enabled") {
		cfg.SectionRedactionEnabled = viper.GetBool("privacy.section_redaction_enabled")
	}
	if v := viper.GetString("privacy.redaction_placeholder"); v != "" {
		cfg.RedactionPlaceholder = v
	}
	if viper.IsSet("privacy.folder_name_case_sensitive") {
		cfg.FolderNameCaseSensitive = viper.GetBool("privacy.folder_name_case_sensitive")
	}
	if v := viper.GetInt("performance.cache_capacity"); v > 0 {
		cfg.Performance.CacheCapacity = v
	}
	if v := viper.GetInt("performance.batch_size"); v > 0 {
		cfg.Performance.BatchSize = v
	}
	if v := viper.GetInt("performance.max_content_bytes"); v > 0 {
		cfg.Performance.MaxContentBytes = v
	}
	if viper.IsSet("performance.lazy_loading") {
		cfg.Performance.LazyLoading = viper.GetBool("performance.lazy_loading")
	}

	return cfg
}

// newEngine builds an engine and its audit log from the loaded config.
func newEngine() (*privacy.Engine, *audit.Log, error) {
	log := audit.NewLog()
	engine, err := privacy.New(privacyConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	return engine, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
