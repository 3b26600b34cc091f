// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// VerificationReport is the result of checking a (original, redacted) pair.
// It is computed fresh per call and never persisted.
type VerificationReport struct {
	// IsValid is true iff no violations were found.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// Violations lists human-readable descriptions of every leak or
	// integrity problem, in discovery order.
	Violations []string `json:"violations" yaml:"violations"`

	// Summary is a one-line description of the outcome.
	Summary string `json:"summary" yaml:"summary"`
}

// AuditReport is an aggregate view over a filtered slice of the action log.
// Derived data, recomputed on demand.
type AuditReport struct {
	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Total is the number of actions covered by the report.
	Total int `json:"total" yaml:"total"`

	// CountsByKind breaks Total down per decision category.
	CountsByKind map[ActionKind]int `json:"counts_by_kind" yaml:"counts_by_kind"`

	// UniqueFiles is the number of distinct file paths affected.
	UniqueFiles int `json:"unique_files" yaml:"unique_files"`

	// Actions is the full filtered listing, present only when requested.
	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// AffectedFiles is the sorted set of distinct file paths, present only
	// when requested.
	AffectedFiles []string `json:"affected_files,omitempty" yaml:"affected_files,omitempty"`
}

// Summary returns a one-line description of the report totals.
func (r AuditReport) Summary() string {
	return fmt.Sprintf("%d privacy actions across %d files (excluded: %d, redacted: %d)",
		r.Total,
		r.UniqueFiles,
		r.CountsByKind[ActionFileExcluded]+r.CountsByKind[ActionFolderExcluded],
		r.CountsByKind[ActionSectionRedacted]+r.CountsByKind[ActionContentRedacted],
	)
}
