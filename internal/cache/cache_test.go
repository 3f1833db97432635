package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/internal/cache"
)

func TestCache_GetPut(t *testing.T) {
	c := cache.New(10, time.Minute, 0)
	defer func() { _ = c.Close() }()

	_, ok, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put("a", 1))
	v, ok, err := c.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// Replacing a key keeps a single entry.
	require.NoError(t, c.Put("a", 2))
	v, _, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_LRUEviction(t *testing.T) {
	c := cache.New(2, time.Minute, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok, err := c.Get("a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Put("c", 3))

	_, ok, _ = c.Get("a")
	assert.True(t, ok, "recently used entry survives")
	_, ok, _ = c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok, _ = c.Get("c")
	assert.True(t, ok)

	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := cache.New(10, 20*time.Millisecond, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	_, ok, err := c.Get("a")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	// Lazy expiry: the stale entry is removed on access and counts as a miss.
	_, ok, err = c.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_BackgroundSweep(t *testing.T) {
	c := cache.New(10, 10*time.Millisecond, 15*time.Millisecond)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2))

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 10*time.Millisecond, "sweep removes expired entries without lookups")
}

func TestCache_GetOrCreate(t *testing.T) {
	c := cache.New(10, time.Minute, 0)
	defer func() { _ = c.Close() }()

	calls := 0
	factory := func() (any, error) {
		calls++
		return "built", nil
	}

	v, err := c.GetOrCreate("k", factory)
	require.NoError(t, err)
	assert.Equal(t, "built", v)
	assert.Equal(t, 1, calls)

	v, err = c.GetOrCreate("k", factory)
	require.NoError(t, err)
	assert.Equal(t, "built", v)
	assert.Equal(t, 1, calls, "second call is served from cache")

	// Factory failures are not cached.
	_, err = c.GetOrCreate("bad", func() (any, error) {
		return nil, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	_, ok, _ := c.Get("bad")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := cache.New(10, time.Minute, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	c.Get("a")       // hit
	c.Get("a")       // hit
	c.Get("missing") // miss

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(3), stats.Lookups)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)

	assert.Zero(t, cache.Stats{}.HitRate())
}

func TestCache_ClearKeepsCounters(t *testing.T) {
	c := cache.New(10, time.Minute, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	c.Get("a")
	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)

	_, ok, err := c.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Remove(t *testing.T) {
	c := cache.New(10, time.Minute, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Put("a", 1))
	c.Remove("a")
	c.Remove("a") // removing a missing key is a no-op

	_, ok, _ := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Close(t *testing.T) {
	c := cache.New(10, time.Minute, time.Minute)
	require.NoError(t, c.Put("a", 1))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close is idempotent")

	_, _, err := c.Get("a")
	assert.ErrorIs(t, err, cache.ErrClosed)
	assert.ErrorIs(t, c.Put("b", 2), cache.ErrClosed)

	_, err = c.GetOrCreate("c", func() (any, error) { return 1, nil })
	assert.ErrorIs(t, err, cache.ErrClosed)
}

func TestCache_Concurrency(t *testing.T) {
	c := cache.New(64, time.Minute, 0)
	defer func() { _ = c.Close() }()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%32)
				v, err := c.GetOrCreate(key, func() (any, error) {
					return key, nil
				})
				if assert.NoError(t, err) {
					assert.Equal(t, key, v)
				}
			}
		}(g)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 32, stats.Entries)
	assert.Positive(t, stats.Hits)
}
