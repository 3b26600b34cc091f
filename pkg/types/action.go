// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the privacy enforcement
// engine: configuration, privacy actions, and report records.
package types

import (
	"fmt"
	"time"
)

// ActionKind categorizes a privacy decision.
type ActionKind string

const (
	// ActionFileExcluded means a file was excluded because its content
	// contains an exclusion marker.
	ActionFileExcluded ActionKind = "file_excluded"

	// ActionFolderExcluded means a file was excluded because its path lies
	// inside an excluded folder.
	ActionFolderExcluded ActionKind = "folder_excluded"

	// ActionSectionRedacted means one or more sections of a file were
	// replaced by the placeholder.
	ActionSectionRedacted ActionKind = "section_redacted"

	// ActionContentRedacted means the entire content was replaced by the
	// placeholder.
	ActionContentRedacted ActionKind = "content_redacted"
)

// knownKinds is the set of accepted ActionKind values.
var knownKinds = map[ActionKind]bool{
	ActionFileExcluded:    true,
	ActionFolderExcluded:  true,
	ActionSectionRedacted: true,
	ActionContentRedacted: true,
}

// Action is one immutable record of a privacy decision. Actions are created
// only by the engine and never modified after creation.
type Action struct {
	// Kind is the decision category.
	Kind ActionKind `json:"kind" yaml:"kind"`

	// FilePath is the path of the affected file. Content-only operations
	// record the pseudo-path "(content)".
	FilePath string `json:"file_path" yaml:"file_path"`

	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Metadata carries optional decision details: a reason string, the
	// matched folder name, or the count of redacted sections.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Valid reports whether the action is structurally complete. The audit log
// rejects invalid actions rather than recording partial entries.
func (a Action) Valid() error {
	if !knownKinds[a.Kind] {
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.FilePath == "" {
		return fmt.Errorf("action has no file path")
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("action has no timestamp")
	}
	return nil
}
