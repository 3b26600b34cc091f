// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"sort"
	"time"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// ReportOptions selects which actions a report covers and which optional
// sections it carries.
type ReportOptions struct {
	// Kinds restricts the report to the listed action kinds. Empty means
	// all kinds.
	Kinds []types.ActionKind

	// From and To bound the covered timestamps, inclusive. Zero values are
	// unbounded.
	From time.Time
	To   time.Time

	// IncludeActions adds the full filtered action listing to the report.
	IncludeActions bool

	// IncludeFileList adds the sorted set of distinct affected file paths.
	IncludeFileList bool
}

// Report computes an aggregate view over the filtered action log. The
// report is derived data, recomputed on demand; it holds copies only.
func (l *Log) Report(opts ReportOptions) types.AuditReport {
	kindSet := make(map[types.ActionKind]bool, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kindSet[k] = true
	}

	filtered := l.filter(func(a types.Action) bool {
		if len(kindSet) > 0 && !kindSet[a.Kind] {
			return false
		}
		return inRange(a.Timestamp, opts.From, opts.To)
	})

	report := types.AuditReport{
		GeneratedAt:  time.Now(),
		Total:        len(filtered),
		CountsByKind: make(map[types.ActionKind]int),
	}

	files := make(map[string]bool)
	for _, a := range filtered {
		report.CountsByKind[a.Kind]++
		files[a.FilePath] = true
	}
	report.UniqueFiles = len(files)

	if opts.IncludeActions {
		report.Actions = filtered
	}
	if opts.IncludeFileList {
		paths := make([]string, 0, len(files))
		for path := range files {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		report.AffectedFiles = paths
	}

	return report
}
