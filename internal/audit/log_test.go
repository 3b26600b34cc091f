// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"testing"
	"time"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

func action(kind types.ActionKind, path string, at time.Time) types.Action {
	return types.Action{Kind: kind, FilePath: path, Timestamp: at}
}

func seededLog(t *testing.T) (*Log, time.Time) {
	t.Helper()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	log := NewLog()
	log.Record(action(types.ActionFolderExcluded, "Private/a.md", base))
	log.Record(action(types.ActionFileExcluded, "notes/b.md", base.Add(1*time.Minute)))
	log.Record(action(types.ActionSectionRedacted, "notes/b.md", base.Add(2*time.Minute)))
	log.Record(action(types.ActionContentRedacted, "notes/c.md", base.Add(3*time.Minute)))
	return log, base
}

func TestRecordAndAccessors(t *testing.T) {
	log, base := seededLog(t)

	if log.Len() != 4 {
		t.Fatalf("Len = %d, want 4", log.Len())
	}

	if got := log.ByKind(types.ActionFileExcluded); len(got) != 1 || got[0].FilePath != "notes/b.md" {
		t.Fatalf("ByKind = %+v", got)
	}

	if got := log.ByFile("notes/b.md"); len(got) != 2 {
		t.Fatalf("ByFile returned %d actions, want 2", len(got))
	}

	// Range bounds are inclusive on both ends.
	got := log.ByTimeRange(base.Add(1*time.Minute), base.Add(2*time.Minute))
	if len(got) != 2 {
		t.Fatalf("ByTimeRange returned %d actions, want 2", len(got))
	}

	// Zero bounds are unbounded.
	if got := log.ByTimeRange(time.Time{}, time.Time{}); len(got) != 4 {
		t.Fatalf("unbounded ByTimeRange returned %d actions, want 4", len(got))
	}
}

func TestRecordRejectsInvalidActions(t *testing.T) {
	log := NewLog()

	log.Record(types.Action{Kind: "bogus", FilePath: "a.md", Timestamp: time.Now()})
	log.Record(types.Action{Kind: types.ActionFileExcluded, Timestamp: time.Now()})
	log.Record(types.Action{Kind: types.ActionFileExcluded, FilePath: "a.md"})

	if log.Len() != 0 {
		t.Fatalf("invalid actions were recorded: %d", log.Len())
	}
}

func TestAllReturnsCopies(t *testing.T) {
	log, _ := seededLog(t)

	actions := log.All()
	actions[0].FilePath = "tampered.md"

	if log.All()[0].FilePath != "Private/a.md" {
		t.Fatal("caller mutation leaked into audit history")
	}
}

func TestClear(t *testing.T) {
	log, _ := seededLog(t)
	log.Clear()
	if log.Len() != 0 {
		t.Fatalf("Len after Clear = %d", log.Len())
	}
}

func TestReport(t *testing.T) {
	log, base := seededLog(t)

	report := log.Report(ReportOptions{IncludeActions: true, IncludeFileList: true})

	if report.Total != 4 {
		t.Fatalf("Total = %d, want 4", report.Total)
	}
	if report.UniqueFiles != 3 {
		t.Fatalf("UniqueFiles = %d, want 3", report.UniqueFiles)
	}
	if report.CountsByKind[types.ActionFolderExcluded] != 1 {
		t.Errorf("folder_excluded count = %d", report.CountsByKind[types.ActionFolderExcluded])
	}
	if len(report.Actions) != 4 {
		t.Errorf("Actions listing has %d entries", len(report.Actions))
	}

	wantFiles := []string{"Private/a.md", "notes/b.md", "notes/c.md"}
	if len(report.AffectedFiles) != len(wantFiles) {
		t.Fatalf("AffectedFiles = %v", report.AffectedFiles)
	}
	for i, f := range wantFiles {
		if report.AffectedFiles[i] != f {
			t.Errorf("AffectedFiles[%d] = %q, want %q", i, report.AffectedFiles[i], f)
		}
	}

	// Filtered report: kinds and time range combine.
	filtered := log.Report(ReportOptions{
		Kinds: []types.ActionKind{types.ActionSectionRedacted, types.ActionContentRedacted},
		From:  base.Add(3 * time.Minute),
	})
	if filtered.Total != 1 {
		t.Fatalf("filtered Total = %d, want 1", filtered.Total)
	}
	if filtered.Actions != nil {
		t.Error("Actions should be omitted unless requested")
	}
}
