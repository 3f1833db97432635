// Package cache provides the thread-safe LRU+TTL cache that holds compiled
// evaluation units.
//
// Entries expire lazily on access and through a periodic background sweep.
// GetOrCreate runs its factory with the lock released, so a slow
// compilation never serializes unrelated lookups; concurrent factories for
// the same key race benignly, last writer wins, and readers never observe
// a partially built unit. Hit, lookup and eviction counters are exposed
// through Stats.
package cache
