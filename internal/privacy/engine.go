// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package privacy decides which notes may be analyzed at all and removes
// content the user has marked private before it reaches any analysis stage.
// Downstream collaborators (tokenizers, theme detectors, summarizers) must
// never see content this engine has excluded or redacted.
package privacy

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ErnieAtLYD/rspai/internal/audit"
	"github.com/ErnieAtLYD/rspai/internal/folder"
	"github.com/ErnieAtLYD/rspai/internal/pattern"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// contentPath is the pseudo-path recorded for content-only operations.
const contentPath = "(content)"

// blockPattern holds the pre-compiled marker-delimited block expressions
// for one marker: the structural-comment form and the plain form.
type blockPattern struct {
	comment *regexp.Regexp
	plain   *regexp.Regexp
}

// compiledState bundles everything derived from one configuration version.
// It is rebuilt as a whole on settings updates, never patched in place.
type compiledState struct {
	matcher *pattern.Matcher
	folders *folder.Classifier
	blocks  []blockPattern
}

// Engine is the privacy enforcement engine. It owns its configuration,
// compiled matchers, and audit log exclusively; callers only ever receive
// copies of settings, never live references.
type Engine struct {
	mu     sync.RWMutex
	cfg    types.PrivacyConfig
	state  *compiledState
	log    *audit.Log
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for operational warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an engine for cfg, recording decisions into log. The
// configuration is validated up front; markers are compiled immediately,
// or on first use when lazy loading is enabled.
func New(cfg types.PrivacyConfig, log *audit.Log, opts ...Option) (*Engine, error) {
	if log == nil {
		return nil, fmt.Errorf("audit log must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid privacy configuration: %w", err)
	}

	e := &Engine{
		cfg:    cfg.Clone(),
		log:    log,
		logger: slog.Default(),
	}
	if !cfg.Performance.LazyLoading {
		state, err := compile(cfg)
		if err != nil {
			return nil, err
		}
		e.state = state
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// compile builds the matcher, folder classifier, and block expressions for
// one configuration version.
func compile(cfg types.PrivacyConfig) (*compiledState, error) {
	matcher, err := pattern.New(cfg.ExclusionMarkers)
	if err != nil {
		return nil, fmt.Errorf("compiling exclusion markers: %w", err)
	}

	blocks := make([]blockPattern, 0, len(cfg.ExclusionMarkers))
	for _, marker := range cfg.ExclusionMarkers {
		quoted := regexp.QuoteMeta(marker)
		comment, err := regexp.Compile(
			`(?s)<!--\s*` + quoted + `\s+start\s*-->.*?<!--\s*` + quoted + `\s+end\s*-->`)
		if err != nil {
			return nil, fmt.Errorf("compiling comment block for %q: %w", marker, err)
		}
		plain, err := regexp.Compile(
			`(?s)` + quoted + `\s+start\b.*?` + quoted + `\s+end\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling plain block for %q: %w", marker, err)
		}
		blocks = append(blocks, blockPattern{comment: comment, plain: plain})
	}

	return &compiledState{
		matcher: matcher,
		folders: folder.New(cfg.ExcludedFolders, cfg.FolderNameCaseSensitive),
		blocks:  blocks,
	}, nil
}

// snapshot returns the current config and compiled state under one lock
// acquisition, so a settings update cannot interleave with a single
// decision. With lazy loading the state is compiled here on first use;
// compilation cannot fail for a configuration that passed Validate.
func (e *Engine) snapshot() (types.PrivacyConfig, *compiledState) {
	e.mu.RLock()
	if e.state != nil {
		cfg, state := e.cfg, e.state
		e.mu.RUnlock()
		return cfg, state
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		state, err := compile(e.cfg)
		if err != nil {
			// Unreachable for a validated configuration; degrade to a
			// matcher that matches nothing rather than panic.
			e.logger.Warn("marker compilation failed", "error", err)
			state, _ = compile(types.PrivacyConfig{RedactionPlaceholder: e.cfg.RedactionPlaceholder})
		}
		e.state = state
	}
	return e.cfg, e.state
}

// ShouldExcludeFile decides whether the file may be analyzed at all. Folder
// exclusion is evaluated before marker matching: it is cheaper and is a
// stronger, path-level guarantee. Exactly one action is logged when the
// file is excluded, none when it is not; first match wins.
func (e *Engine) ShouldExcludeFile(path, content string) bool {
	if strings.TrimSpace(path) == "" {
		// A blank path is a caller defect, not a privacy signal.
		return false
	}

	_, state := e.snapshot()

	if name, ok := state.folders.Match(path); ok {
		e.log.Record(types.Action{
			Kind:      types.ActionFolderExcluded,
			FilePath:  path,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"folder": name},
		})
		return true
	}

	if state.matcher.ContainsMarker(content) {
		e.log.Record(types.Action{
			Kind:      types.ActionFileExcluded,
			FilePath:  path,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"reason": "contains privacy markers"},
		})
		return true
	}

	return false
}

// UpdateSettings applies a partial configuration update. The merged
// configuration is validated and its markers recompiled before it takes
// effect; on error the previous settings stay in force.
func (e *Engine) UpdateSettings(patch types.PrivacyConfigPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := patch.Apply(e.cfg)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid privacy configuration: %w", err)
	}
	state, err := compile(next)
	if err != nil {
		return err
	}

	e.cfg = next
	e.state = state
	return nil
}

// Settings returns a defensive copy of the current configuration.
func (e *Engine) Settings() types.PrivacyConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Clone()
}

// AuditLog returns the audit log owned by this engine.
func (e *Engine) AuditLog() *audit.Log {
	return e.log
}
