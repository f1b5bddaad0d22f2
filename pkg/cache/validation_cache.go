// Package cache remembers whether a given model file's bytes have
// already passed CRC-32C validation, so a host that reloads the same
// model bytes repeatedly (a CLI re-run against an unchanged file, a
// hot-reload watcher) doesn't pay for the whole-file checksum walk
// every time.
//
// This is not a model cache: it keys on content, not on a model
// identity, and stores nothing but a verified/not-verified bit. Only
// one model is ever resident at a time — see SPEC_FULL.md's Non-goals.
package cache

import (
	"container/list"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Key is a content fingerprint suitable for use as a ValidationCache
// key. blake2b-256 is fast and collision-resistant enough for this
// purpose without crypto/sha256's extra rounds.
type Key [32]byte

// SumKey hashes data with blake2b-256.
func SumKey(data []byte) Key {
	return Key(blake2b.Sum256(data))
}

type validationEntry struct {
	key       Key
	verified  bool
	expiresAt time.Time
}

// CacheStats reports cumulative hit/miss counts.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// ValidationCache is a thread-safe, bounded LRU+TTL cache of checksum
// verification outcomes.
type ValidationCache struct {
	mu sync.Mutex

	maxSize int
	ttl     time.Duration

	list  *list.List
	items map[Key]*list.Element

	hits, misses uint64
}

// NewValidationCache creates a cache holding at most maxSize entries,
// each valid for ttl (0 disables expiration).
func NewValidationCache(maxSize int, ttl time.Duration) *ValidationCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &ValidationCache{
		maxSize: maxSize,
		ttl:     ttl,
		list:    list.New(),
		items:   make(map[Key]*list.Element, maxSize),
	}
}

// Lookup reports whether key's verification outcome is cached and, if
// so, what it was.
func (c *ValidationCache) Lookup(key Key) (verified, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return false, false
	}
	entry := elem.Value.(*validationEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return false, false
	}

	c.list.MoveToFront(elem)
	c.hits++
	return entry.verified, true
}

// Remember records key's verification outcome, evicting the least
// recently used entry if the cache is full.
func (c *ValidationCache) Remember(key Key, verified bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*validationEntry)
		entry.verified = verified
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.list.MoveToFront(elem)
		return
	}

	for c.list.Len() >= c.maxSize {
		log.Printf("[CACHE] evicting least-recently-used entry, size=%d", c.maxSize)
		c.removeLocked(c.list.Back())
	}

	entry := &validationEntry{key: key, verified: verified}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.items[key] = c.list.PushFront(entry)
}

// Clear empties the cache without resetting its hit/miss counters.
func (c *ValidationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Init()
	c.items = make(map[Key]*list.Element, c.maxSize)
}

// Len reports the current number of cached entries.
func (c *ValidationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// Stats returns a snapshot of cumulative hit/miss counts.
func (c *ValidationCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses}
}

func (c *ValidationCache) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*validationEntry)
	delete(c.items, entry.key)
	c.list.Remove(elem)
}
