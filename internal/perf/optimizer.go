// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perf

import (
	"log/slog"
	"sync"

	"github.com/ErnieAtLYD/rspai/internal/privacy"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// largeCollectionCapacity and largeCollectionBatch are the floors applied
// by OptimizeForLargeCollections.
const (
	largeCollectionCapacity = 5000
	largeCollectionBatch    = 200
)

// Optimizer wraps an engine with result caching, batch processing, and a
// content-size ceiling. Batch work runs sequentially inside one logical
// operation; the layer amortizes call overhead, it does not parallelize.
type Optimizer struct {
	mu              sync.Mutex
	engine          *privacy.Engine
	cache           *Cache
	enabled         bool
	batchSize       int
	maxContentBytes int
	logger          *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger used for size-limit and fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOptimizer builds a performance layer around engine, sized from the
// engine's performance settings.
func NewOptimizer(engine *privacy.Engine, opts ...Option) *Optimizer {
	perf := engine.Settings().Performance
	o := &Optimizer{
		engine:          engine,
		cache:           NewCache(perf.CacheCapacity),
		enabled:         true,
		batchSize:       perf.BatchSize,
		maxContentBytes: perf.MaxContentBytes,
		logger:          slog.Default(),
	}
	if o.batchSize <= 0 {
		o.batchSize = 50
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetEnabled turns the performance layer on or off. When disabled, every
// call falls through to the engine uncached.
func (o *Optimizer) SetEnabled(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = enabled
}

// Enabled reports whether the performance layer is active.
func (o *Optimizer) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

// oversized reports whether content exceeds the size ceiling, warning once
// per offending call. Oversized files fail open: analysis is skipped
// rather than risked.
func (o *Optimizer) oversized(path, content string) bool {
	if o.maxContentBytes <= 0 || len(content) <= o.maxContentBytes {
		return false
	}
	o.logger.Warn("content exceeds size limit, skipping privacy analysis",
		"file_path", path,
		"size", len(content),
		"limit", o.maxContentBytes,
	)
	return true
}

// ShouldExcludeFileOptimized is ShouldExcludeFile with result caching.
// Oversized content is treated as non-private. A cache hit replays the
// stored verdict without recording an audit action: the log holds one
// entry per decision the engine actually made, not one per lookup.
func (o *Optimizer) ShouldExcludeFileOptimized(path, content string) bool {
	if o.oversized(path, content) {
		return false
	}
	if !o.Enabled() {
		return o.engine.ShouldExcludeFile(path, content)
	}

	fp := Fingerprint(content)
	key := Key(OpExclusion, path, fp)
	if cached, ok := o.cache.Get(key); ok {
		return cached.Excluded
	}

	excluded := o.engine.ShouldExcludeFile(path, content)
	o.cache.Put(key, fp, Result{Op: OpExclusion, Excluded: excluded})
	return excluded
}

// FilterContentOptimized is FilterFile with result caching. Oversized
// content is returned unmodified.
func (o *Optimizer) FilterContentOptimized(path, content string) string {
	if o.oversized(path, content) {
		return content
	}
	if !o.Enabled() {
		return o.engine.FilterFile(path, content)
	}

	fp := Fingerprint(content)
	key := Key(OpFilter, path, fp)
	if cached, ok := o.cache.Get(key); ok {
		return cached.Content
	}

	filtered := o.engine.FilterFile(path, content)
	o.cache.Put(key, fp, Result{Op: OpFilter, Content: filtered})
	return filtered
}

// Request is one unit of batch work.
type Request struct {
	Path    string
	Content string
	Op      Operation
}

// Response pairs a request with its outcome. Excluded is meaningful for
// OpExclusion, Content for OpFilter.
type Response struct {
	Request
	Excluded bool
	Content  string
}

// ProcessBatch runs requests sequentially and returns responses in input
// order. With the performance layer disabled each item falls back to an
// uncached engine call.
func (o *Optimizer) ProcessBatch(requests []Request) []Response {
	responses := make([]Response, len(requests))
	for i, req := range requests {
		resp := Response{Request: req}
		switch req.Op {
		case OpFilter:
			resp.Content = o.FilterContentOptimized(req.Path, req.Content)
		default:
			resp.Excluded = o.ShouldExcludeFileOptimized(req.Path, req.Content)
		}
		responses[i] = resp
	}
	return responses
}

// BatchSize returns the configured batch chunk size.
func (o *Optimizer) BatchSize() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.batchSize
}

// OptimizeForLargeCollections raises the cache capacity and batch size and
// enables lazy marker loading, for vaults with thousands of notes. The
// engine's settings are updated so the new tuning survives a settings read.
func (o *Optimizer) OptimizeForLargeCollections() error {
	o.mu.Lock()
	capacity := largeCollectionCapacity
	batch := largeCollectionBatch
	if o.batchSize > batch {
		batch = o.batchSize
	}
	o.batchSize = batch
	o.cache.Resize(capacity)
	o.mu.Unlock()

	lazy := true
	return o.engine.UpdateSettings(types.PrivacyConfigPatch{
		CacheCapacity: &capacity,
		BatchSize:     &batch,
		LazyLoading:   &lazy,
	})
}

// CacheStats returns the underlying cache counters.
func (o *Optimizer) CacheStats() Stats {
	return o.cache.Stats()
}

// ClearCache drops all cached results, e.g. after a settings change that
// affects redaction output.
func (o *Optimizer) ClearCache() {
	o.cache.Clear()
}
