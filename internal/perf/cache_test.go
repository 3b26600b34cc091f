// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perf

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("some note content")
	b := Fingerprint("some note content")
	c := Fingerprint("different content")

	assert.Equal(t, a, b, "identical content must fingerprint identically")
	assert.NotEqual(t, a, c)
	assert.NotZero(t, Fingerprint(""))
}

func TestCacheGetPut(t *testing.T) {
	cache := NewCache(10)
	fp := Fingerprint("content")
	key := Key(OpFilter, "a.md", fp)

	_, ok := cache.Get(key)
	require.False(t, ok)

	cache.Put(key, fp, Result{Op: OpFilter, Content: "redacted"})

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "redacted", got.Content)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Greater(t, stats.Bytes, 0)
}

func TestCacheTTLExpiry(t *testing.T) {
	old := CacheTTL
	CacheTTL = 10 * time.Millisecond
	t.Cleanup(func() { CacheTTL = old })

	cache := NewCache(10)
	fp := Fingerprint("x")
	key := Key(OpExclusion, "a.md", fp)
	cache.Put(key, fp, Result{Op: OpExclusion, Excluded: true})

	time.Sleep(25 * time.Millisecond)

	_, ok := cache.Get(key)
	assert.False(t, ok, "expired entry must be treated as absent")
	assert.Equal(t, 0, cache.Stats().Entries, "expired entry must be purged on lookup")
}

func TestCacheEvictsOldestTenthWhenFull(t *testing.T) {
	cache := NewCache(20)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("filter:file%02d.md:%016x", i, uint64(i))
		cache.Put(key, uint64(i), Result{Op: OpFilter, Content: "r"})
		time.Sleep(time.Millisecond)
	}

	// The next insert evicts the oldest 10% (2 entries).
	cache.Put("filter:new.md:00000000000000ff", 0xff, Result{Op: OpFilter, Content: "r"})

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Evictions)
	assert.Equal(t, 19, stats.Entries)

	// The oldest entries are the ones gone.
	_, ok := cache.Get(fmt.Sprintf("filter:file%02d.md:%016x", 0, uint64(0)))
	assert.False(t, ok)
	_, ok = cache.Get(fmt.Sprintf("filter:file%02d.md:%016x", 19, uint64(19)))
	assert.True(t, ok)
}

func TestCacheResizeShrinks(t *testing.T) {
	cache := NewCache(10)
	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("k%d", i), uint64(i), Result{Op: OpFilter})
		time.Sleep(time.Millisecond)
	}

	cache.Resize(5)
	assert.LessOrEqual(t, cache.Stats().Entries, 5)
}

func TestCacheClearKeepsCounters(t *testing.T) {
	cache := NewCache(10)
	fp := Fingerprint("x")
	key := Key(OpFilter, "a.md", fp)
	cache.Put(key, fp, Result{Op: OpFilter, Content: "r"})
	cache.Get(key)

	cache.Clear()

	stats := cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
}
