package cache

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("cache is closed")

const (
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 1000

	// DefaultTTL is the per-entry lifetime.
	DefaultTTL = time.Hour

	// DefaultSweepInterval is how often the background sweep removes
	// expired entries that no lookup has touched.
	DefaultSweepInterval = 10 * time.Minute
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Lookups   int64
	Evictions int64
	Entries   int
}

// HitRate returns hits/lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is a thread-safe LRU cache with per-entry TTL for compiled
// evaluation units. Expiry is checked lazily on access and by a periodic
// background sweep. The cache owns its values exclusively; callers must
// treat returned units as immutable.
type Cache struct {
	mu    sync.Mutex
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	capacity int
	ttl      time.Duration

	hits      atomic.Int64
	lookups   atomic.Int64
	evictions atomic.Int64

	closed atomic.Bool
	stop   chan struct{}
	done   chan struct{}
}

// New creates a cache and starts its sweep goroutine. A non-positive
// capacity or ttl falls back to the default; a non-positive sweep interval
// disables the background sweep (lazy expiry still applies).
func New(capacity int, ttl, sweepInterval time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		capacity: capacity,
		ttl:      ttl,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the cached value for key, refreshing its recency. Expired
// entries are removed and reported as misses.
func (c *Cache) Get(key string) (any, bool, error) {
	if c.closed.Load() {
		return nil, false, ErrClosed
	}
	c.lookups.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeElement(el)
		return nil, false, nil
	}
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return e.value, true, nil
}

// GetOrCreate returns the cached value for key, or runs factory to build
// it. The lock is released while factory runs, so a slow compilation never
// blocks other keys; two callers may race the factory for the same key, in
// which case the last writer wins and both observe a fully built value.
func (c *Cache) GetOrCreate(key string, factory func() (any, error)) (any, error) {
	v, ok, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}

	v, err = factory()
	if err != nil {
		return nil, err
	}

	if err := c.Put(key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Put inserts or replaces the value for key, evicting the least recently
// used entry when at capacity.
func (c *Cache) Put(key string, value any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return nil
	}

	el := c.ll.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions.Add(1)
	}
	return nil
}

// Remove deletes key if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len returns the number of live entries, including not-yet-swept expired
// ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns a counter snapshot.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := c.ll.Len()
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Lookups:   c.lookups.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
	}
}

// Close stops the sweep goroutine and empties the cache. Operations after
// Close fail fast with ErrClosed. Close is idempotent.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stop)
	<-c.done
	c.Clear()
	return nil
}

// removeElement must be called with the lock held.
func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

func (c *Cache) sweepLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes every expired entry.
func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.removeElement(el)
		}
		el = prev
	}
}
