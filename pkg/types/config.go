// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// DefaultPlaceholder replaces redacted content in filtered output. The
// verification stage treats it as a reserved token, so user content should
// never contain it naturally.
const DefaultPlaceholder = "[REDACTED]"

// PerformanceConfig holds tuning knobs for the performance layer.
type PerformanceConfig struct {
	// CacheCapacity is the maximum number of cached privacy results (default 1000).
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`

	// BatchSize is the number of requests processed per batch (default 50).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxContentBytes is the content size ceiling above which privacy
	// analysis is skipped and the input returned unchanged (default 1 MiB).
	MaxContentBytes int `json:"max_content_bytes" yaml:"max_content_bytes"`

	// LazyLoading defers marker compilation until first use.
	LazyLoading bool `json:"lazy_loading" yaml:"lazy_loading"`
}

// PrivacyConfig holds the per-session privacy enforcement settings.
// It is treated as immutable: the engine replaces the whole value on
// settings updates and hands out copies, never live references.
type PrivacyConfig struct {
	// ExclusionMarkers lists the tokens that mark content as private
	// (e.g. "#private"). Order is preserved.
	ExclusionMarkers []string `json:"exclusion_markers" yaml:"exclusion_markers"`

	// ExcludedFolders lists folder names whose files are never analyzed.
	ExcludedFolders []string `json:"excluded_folders" yaml:"excluded_folders"`

	// SectionRedactionEnabled selects section-level redaction instead of
	// whole-document redaction when a marker is found.
	SectionRedactionEnabled bool `json:"section_redaction_enabled" yaml:"section_redaction_enabled"`

	// RedactionPlaceholder replaces redacted content (default "[REDACTED]").
	RedactionPlaceholder string `json:"redaction_placeholder" yaml:"redaction_placeholder"`

	// FolderNameCaseSensitive makes excluded-folder comparison case sensitive.
	FolderNameCaseSensitive bool `json:"folder_name_case_sensitive" yaml:"folder_name_case_sensitive"`

	// Performance holds cache, batch, and size-limit tuning.
	Performance PerformanceConfig `json:"performance" yaml:"performance"`
}

// DefaultPrivacyConfig returns the engine defaults.
func DefaultPrivacyConfig() PrivacyConfig {
	return PrivacyConfig{
		ExclusionMarkers:        []string{"#private", "#noai", "#confidential"},
		ExcludedFolders:         []string{"Private", "Confidential", ".obsidian"},
		SectionRedactionEnabled: true,
		RedactionPlaceholder:    DefaultPlaceholder,
		Performance: PerformanceConfig{
			CacheCapacity:   1000,
			BatchSize:       50,
			MaxContentBytes: 1 << 20,
		},
	}
}

// Validate checks the configuration invariants. The placeholder must be
// non-empty and must not contain any exclusion marker; otherwise verification
// would flag the engine's own placeholder as a leak.
func (c PrivacyConfig) Validate() error {
	if strings.TrimSpace(c.RedactionPlaceholder) == "" {
		return fmt.Errorf("redaction placeholder must not be empty")
	}
	for _, marker := range c.ExclusionMarkers {
		if marker == "" {
			return fmt.Errorf("exclusion markers must not be empty")
		}
		if strings.Contains(c.RedactionPlaceholder, marker) {
			return fmt.Errorf("redaction placeholder %q contains exclusion marker %q", c.RedactionPlaceholder, marker)
		}
	}
	return nil
}

// Clone returns a deep copy, so callers can receive settings without
// exposing the engine's own slices to mutation.
func (c PrivacyConfig) Clone() PrivacyConfig {
	out := c
	out.ExclusionMarkers = append([]string(nil), c.ExclusionMarkers...)
	out.ExcludedFolders = append([]string(nil), c.ExcludedFolders...)
	return out
}

// PrivacyConfigPatch is a partial settings update. Nil fields leave the
// current value in place.
type PrivacyConfigPatch struct {
	ExclusionMarkers        []string `json:"exclusion_markers,omitempty" yaml:"exclusion_markers,omitempty"`
	ExcludedFolders         []string `json:"excluded_folders,omitempty" yaml:"excluded_folders,omitempty"`
	SectionRedactionEnabled *bool    `json:"section_redaction_enabled,omitempty" yaml:"section_redaction_enabled,omitempty"`
	RedactionPlaceholder    *string  `json:"redaction_placeholder,omitempty" yaml:"redaction_placeholder,omitempty"`
	FolderNameCaseSensitive *bool    `json:"folder_name_case_sensitive,omitempty" yaml:"folder_name_case_sensitive,omitempty"`
	CacheCapacity           *int     `json:"cache_capacity,omitempty" yaml:"cache_capacity,omitempty"`
	BatchSize               *int     `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	MaxContentBytes         *int     `json:"max_content_bytes,omitempty" yaml:"max_content_bytes,omitempty"`
	LazyLoading             *bool    `json:"lazy_loading,omitempty" yaml:"lazy_loading,omitempty"`
}

// Apply merges the patch into a copy of c and returns the result.
func (p PrivacyConfigPatch) Apply(c PrivacyConfig) PrivacyConfig {
	out := c.Clone()
	if p.ExclusionMarkers != nil {
		out.ExclusionMarkers = append([]string(nil), p.ExclusionMarkers...)
	}
	if p.ExcludedFolders != nil {
		out.ExcludedFolders = append([]string(nil), p.ExcludedFolders...)
	}
	if p.SectionRedactionEnabled != nil {
		out.SectionRedactionEnabled = *p.SectionRedactionEnabled
	}
	if p.RedactionPlaceholder != nil {
		out.RedactionPlaceholder = *p.RedactionPlaceholder
	}
	if p.FolderNameCaseSensitive != nil {
		out.FolderNameCaseSensitive = *p.FolderNameCaseSensitive
	}
	if p.CacheCapacity != nil {
		out.Performance.CacheCapacity = *p.CacheCapacity
	}
	if p.BatchSize != nil {
		out.Performance.BatchSize = *p.BatchSize
	}
	if p.MaxContentBytes != nil {
		out.Performance.MaxContentBytes = *p.MaxContentBytes
	}
	if p.LazyLoading != nil {
		out.Performance.LazyLoading = *p.LazyLoading
	}
	return out
}
