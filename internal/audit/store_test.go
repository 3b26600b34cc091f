// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := NewStore(filepath.Join(tmpDir, "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, tmpDir
}

func TestArchiveAndQuery(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	actions := []types.Action{
		{
			Kind: types.ActionFolderExcluded, FilePath: "Private/a.md",
			Timestamp: base, Metadata: map[string]string{"folder": "Private"},
		},
		{
			Kind: types.ActionSectionRedacted, FilePath: "notes/b.md",
			Timestamp: base.Add(time.Minute), Metadata: map[string]string{"sections": "2"},
		},
		// Invalid action is skipped, not stored partially.
		{Kind: "bogus", FilePath: "x.md", Timestamp: base},
	}

	stored, err := store.Archive(ctx, actions)
	if err != nil {
		t.Fatal(err)
	}
	if stored != 2 {
		t.Fatalf("Archive stored %d actions, want 2", stored)
	}

	all, err := store.Query(ctx, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("Query returned %d actions, want 2", len(all))
	}
	if all[0].Kind != types.ActionFolderExcluded || all[0].Metadata["folder"] != "Private" {
		t.Fatalf("first action round-trip mismatch: %+v", all[0])
	}
	if !all[0].Timestamp.Equal(base) {
		t.Fatalf("timestamp round-trip mismatch: %v", all[0].Timestamp)
	}

	byKind, err := store.Query(ctx, QueryOptions{Kind: types.ActionSectionRedacted})
	if err != nil {
		t.Fatal(err)
	}
	if len(byKind) != 1 || byKind[0].FilePath != "notes/b.md" {
		t.Fatalf("kind filter mismatch: %+v", byKind)
	}

	byTime, err := store.Query(ctx, QueryOptions{From: base.Add(30 * time.Second)})
	if err != nil {
		t.Fatal(err)
	}
	if len(byTime) != 1 {
		t.Fatalf("time filter returned %d actions, want 1", len(byTime))
	}

	limited, err := store.Query(ctx, QueryOptions{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit returned %d actions, want 1", len(limited))
	}
}

func TestExportJSONAndYAML(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()

	_, err := store.Archive(ctx, []types.Action{{
		Kind: types.ActionContentRedacted, FilePath: "notes/c.md",
		Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(tmpDir, "audit.json")
	if err := store.ExportJSON(ctx, jsonPath, QueryOptions{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []types.Action
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 || fromJSON[0].FilePath != "notes/c.md" {
		t.Fatalf("JSON export mismatch: %+v", fromJSON)
	}

	yamlPath := filepath.Join(tmpDir, "audit.yaml")
	if err := store.ExportYAML(ctx, yamlPath, QueryOptions{}); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []types.Action
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 1 || fromYAML[0].Kind != types.ActionContentRedacted {
		t.Fatalf("YAML export mismatch: %+v", fromYAML)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "audit.db")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Archive(ctx, []types.Action{{
		Kind: types.ActionFileExcluded, FilePath: "a.md", Timestamp: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	actions, err := reopened.Query(ctx, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 {
		t.Fatalf("after reopen, %d actions, want 1", len(actions))
	}
}
