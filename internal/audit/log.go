// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit records every privacy-relevant decision the engine makes.
// The in-memory log is append-only: actions are never mutated after being
// recorded, and read accessors return copies so callers cannot rewrite
// audit history.
package audit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// Log is an append-only, mutex-guarded record of privacy actions. One Log
// belongs to exactly one engine instance; it is never a process-wide
// singleton, so multiple configurations can coexist in tests.
type Log struct {
	mu      sync.Mutex
	actions []types.Action
	logger  *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger used for rejected-action warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLog returns an empty audit log.
func NewLog(opts ...Option) *Log {
	l := &Log{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an action to the log. Structurally invalid actions are
// rejected with a warning instead of an error: a missed audit entry must
// never block content processing.
func (l *Log) Record(action types.Action) {
	if err := action.Valid(); err != nil {
		l.logger.Warn("rejecting invalid audit action",
			"kind", string(action.Kind),
			"file_path", action.FilePath,
			"error", err,
		)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, action)
}

// All returns a copy of every recorded action, in record order.
func (l *Log) All() []types.Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Action(nil), l.actions...)
}

// Len returns the number of recorded actions.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}

// Clear discards all recorded actions.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
}

// ByKind returns copies of all actions of the given kind.
func (l *Log) ByKind(kind types.ActionKind) []types.Action {
	return l.filter(func(a types.Action) bool { return a.Kind == kind })
}

// ByFile returns copies of all actions affecting the given file path.
func (l *Log) ByFile(path string) []types.Action {
	return l.filter(func(a types.Action) bool { return a.FilePath == path })
}

// ByTimeRange returns copies of all actions whose timestamp lies in
// [from, to], inclusive on both ends. A zero bound is unbounded.
func (l *Log) ByTimeRange(from, to time.Time) []types.Action {
	return l.filter(func(a types.Action) bool { return inRange(a.Timestamp, from, to) })
}

func (l *Log) filter(keep func(types.Action) bool) []types.Action {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []types.Action
	for _, a := range l.actions {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
