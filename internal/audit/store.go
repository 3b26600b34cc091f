// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// Store archives privacy actions in a SQLite database for offline review.
// The engine itself needs no persistence; the archive exists so audit
// trails survive the session that produced them.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the audit archive at path and creates the
// schema if it does not exist.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening audit archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS actions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			file_path TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_kind ON actions(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_file_path ON actions(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Archive inserts actions into the archive in one transaction and returns
// the number stored. Invalid actions are skipped, not stored partially.
func (s *Store) Archive(ctx context.Context, actions []types.Action) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO actions (kind, file_path, timestamp, metadata) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, a := range actions {
		if a.Valid() != nil {
			continue
		}
		metaJSON, _ := json.Marshal(a.Metadata)
		_, err := stmt.ExecContext(ctx,
			string(a.Kind), a.FilePath,
			a.Timestamp.UTC().Format(time.RFC3339Nano), string(metaJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting action for %s: %w", a.FilePath, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing archive: %w", err)
	}
	return stored, nil
}

// QueryOptions filters archive queries.
type QueryOptions struct {
	// Kind restricts results to one action kind. Empty means all kinds.
	Kind types.ActionKind

	// FilePath restricts results to one file. Empty means all files.
	FilePath string

	// From and To bound the covered timestamps, inclusive. Zero values are
	// unbounded.
	From time.Time
	To   time.Time

	// Limit caps the result count. Zero means no limit.
	Limit int
}

// Query returns archived actions matching opts, oldest first.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.Action, error) {
	query := `SELECT kind, file_path, timestamp, metadata FROM actions WHERE 1=1`
	var args []any

	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(opts.Kind))
	}
	if opts.FilePath != "" {
		query += ` AND file_path = ?`
		args = append(args, opts.FilePath)
	}
	if !opts.From.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, opts.From.UTC().Format(time.RFC3339Nano))
	}
	if !opts.To.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, opts.To.UTC().Format(time.RFC3339Nano))
	}

	query += ` ORDER BY rowid`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit archive: %w", err)
	}
	defer rows.Close()

	var actions []types.Action
	for rows.Next() {
		var (
			a        types.Action
			kind     string
			ts       string
			metaJSON sql.NullString
		)
		if err := rows.Scan(&kind, &a.FilePath, &ts, &metaJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		a.Kind = types.ActionKind(kind)
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			a.Timestamp = parsed
		}
		if metaJSON.Valid && metaJSON.String != "null" {
			json.Unmarshal([]byte(metaJSON.String), &a.Metadata)
		}

		actions = append(actions, a)
	}

	return actions, rows.Err()
}

// ExportJSON writes the archived actions matching opts to path as
// indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string, opts QueryOptions) error {
	actions, err := s.Query(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := json.MarshalIndent(actions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportYAML writes the archived actions matching opts to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string, opts QueryOptions) error {
	actions, err := s.Query(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(actions)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
