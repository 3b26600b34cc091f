// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package privacy

import (
	"testing"

	"github.com/ErnieAtLYD/rspai/internal/audit"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// --- test helpers ---

func testEngine(t *testing.T, mutate func(*types.PrivacyConfig)) (*Engine, *audit.Log) {
	t.Helper()
	cfg := types.DefaultPrivacyConfig()
	cfg.ExclusionMarkers = []string{"#private", "#confidential"}
	cfg.ExcludedFolders = []string{"Private", "Journal"}
	if mutate != nil {
		mutate(&cfg)
	}

	log := audit.NewLog()
	engine, err := New(cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	return engine, log
}

func TestShouldExcludeFile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		want     bool
		wantKind types.ActionKind
	}{
		{
			name:     "folder exclusion",
			path:     "Private/todo.md",
			content:  "buy milk",
			want:     true,
			wantKind: types.ActionFolderExcluded,
		},
		{
			name:     "nested folder exclusion",
			path:     "vault/Journal/2026/feelings.md",
			content:  "nothing marked",
			want:     true,
			wantKind: types.ActionFolderExcluded,
		},
		{
			name:     "marker in content",
			path:     "work/notes.md",
			content:  "quarterly numbers #confidential here",
			want:     true,
			wantKind: types.ActionFileExcluded,
		},
		{
			name:    "clean file",
			path:    "work/notes.md",
			content: "nothing to hide",
			want:    false,
		},
		{
			name:    "blank path is not a privacy signal",
			path:    "   ",
			content: "even with #private markers",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, log := testEngine(t, nil)

			got := engine.ShouldExcludeFile(tt.path, tt.content)
			if got != tt.want {
				t.Fatalf("ShouldExcludeFile(%q) = %v, want %v", tt.path, got, tt.want)
			}

			if !tt.want {
				if log.Len() != 0 {
					t.Fatalf("expected no audit actions, got %d", log.Len())
				}
				return
			}

			actions := log.All()
			if len(actions) != 1 {
				t.Fatalf("expected exactly one audit action, got %d", len(actions))
			}
			if actions[0].Kind != tt.wantKind {
				t.Errorf("action kind = %q, want %q", actions[0].Kind, tt.wantKind)
			}
			if actions[0].FilePath != tt.path {
				t.Errorf("action path = %q, want %q", actions[0].FilePath, tt.path)
			}
		})
	}
}

// Folder exclusion takes precedence over tag exclusion: the logged action
// must be the folder kind even when the content also carries markers.
func TestShouldExcludeFileFolderPrecedence(t *testing.T) {
	engine, log := testEngine(t, nil)

	if !engine.ShouldExcludeFile("Private/todo.md", "#private buy milk") {
		t.Fatal("expected exclusion")
	}

	actions := log.All()
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %d", len(actions))
	}
	if actions[0].Kind != types.ActionFolderExcluded {
		t.Fatalf("action kind = %q, want %q", actions[0].Kind, types.ActionFolderExcluded)
	}
	if actions[0].Metadata["folder"] != "Private" {
		t.Errorf("matched folder = %q, want Private", actions[0].Metadata["folder"])
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	log := audit.NewLog()

	cfg := types.DefaultPrivacyConfig()
	cfg.RedactionPlaceholder = ""
	if _, err := New(cfg, log); err == nil {
		t.Fatal("expected error for empty placeholder")
	}

	cfg = types.DefaultPrivacyConfig()
	cfg.ExclusionMarkers = []string{"#private"}
	cfg.RedactionPlaceholder = "contains #private marker"
	if _, err := New(cfg, log); err == nil {
		t.Fatal("expected error for placeholder containing a marker")
	}

	if _, err := New(types.DefaultPrivacyConfig(), nil); err == nil {
		t.Fatal("expected error for nil audit log")
	}
}

func TestUpdateSettings(t *testing.T) {
	engine, _ := testEngine(t, nil)

	if engine.FilterContent("notes #secret here") != "notes #secret here" {
		t.Fatal("#secret should not be a marker yet")
	}

	err := engine.UpdateSettings(types.PrivacyConfigPatch{
		ExclusionMarkers: []string{"#secret"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := engine.FilterContent("notes #secret here")
	if got != "[REDACTED]" {
		t.Fatalf("after update, FilterContent = %q, want placeholder", got)
	}

	// #private is no longer configured.
	if engine.FilterContent("notes #private here") != "notes #private here" {
		t.Fatal("#private should no longer be a marker")
	}
}

func TestUpdateSettingsRejectsInvalidPatchAtomically(t *testing.T) {
	engine, _ := testEngine(t, nil)

	bad := ""
	if err := engine.UpdateSettings(types.PrivacyConfigPatch{RedactionPlaceholder: &bad}); err == nil {
		t.Fatal("expected error for empty placeholder")
	}

	// Previous settings stay in force.
	if got := engine.Settings().RedactionPlaceholder; got != "[REDACTED]" {
		t.Fatalf("placeholder = %q, want previous value", got)
	}
}

func TestSettingsReturnsDefensiveCopy(t *testing.T) {
	engine, _ := testEngine(t, nil)

	settings := engine.Settings()
	settings.ExclusionMarkers[0] = "#mutated"

	if engine.Settings().ExclusionMarkers[0] != "#private" {
		t.Fatal("caller mutation leaked into engine settings")
	}
}

func TestLazyLoadingCompilesOnFirstUse(t *testing.T) {
	engine, log := testEngine(t, func(cfg *types.PrivacyConfig) {
		cfg.Performance.LazyLoading = true
	})

	if !engine.ShouldExcludeFile("notes.md", "#private stuff") {
		t.Fatal("expected exclusion with lazily compiled markers")
	}
	if log.Len() != 1 {
		t.Fatalf("expected one action, got %d", log.Len())
	}
}
