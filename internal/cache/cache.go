package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/modu-ai/moai-adk/internal/phase"
)

// ContextCache is an LRU cache bounded by entry count and approximate memory.
// It is safe for concurrent use.
type ContextCache struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[string, *Entry]
	bytes    int64
	maxBytes int64
	ttl      time.Duration
	now      func() time.Time

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// New creates a ContextCache. Non-positive limits fall back to the defaults.
func New(cfg Config) *ContextCache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	c := &ContextCache{
		maxBytes: maxBytes,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	// NewLRU only fails for a non-positive size, which is ruled out above.
	c.lru, _ = simplelru.NewLRU[string, *Entry](maxEntries, func(_ string, e *Entry) {
		c.bytes -= e.size()
	})
	return c
}

// Key derives the cache key for a phase, its token budget and raw user input.
// Inputs that differ only in case or whitespace share a key. A bundle selected
// under one budget is never served under another.
func Key(p phase.Phase, tokenBudget int, input string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	sum := sha256.Sum256([]byte(normalized))
	return p.Lower() + ":" + strconv.Itoa(tokenBudget) + ":" + hex.EncodeToString(sum[:8])
}

// Get returns the entry for key and marks it most recently used.
func (c *ContextCache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	now := c.now()
	if c.isExpired(e, now) {
		c.lru.Remove(key)
		c.expired++
		c.misses++
		return nil, false
	}
	e.LastAccess = now
	e.AccessCount++
	c.hits++

	return e.clone(), true
}

// Peek returns the entry without updating recency or counters.
func (c *ContextCache) Peek(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Peek(key)
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Put stores entry under key, evicting least-recently-used entries until both
// the entry-count and memory limits hold.
func (c *ContextCache) Put(key string, entry Entry) error {
	e := entry.clone()
	size := e.size()
	if size > c.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrEntryTooLarge, size, c.maxBytes)
	}

	now := c.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.LastAccess.IsZero() {
		e.LastAccess = now
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.put(key, e)
	return nil
}

func (c *ContextCache) put(key string, e *Entry) {
	if old, ok := c.lru.Peek(key); ok {
		// Add updates in place without the eviction callback.
		c.bytes -= old.size()
	}
	if c.lru.Add(key, e) {
		c.evictions++
	}
	c.bytes += e.size()

	for c.bytes > c.maxBytes && c.lru.Len() > 1 {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
		c.evictions++
	}
}

// Remove deletes key, reporting whether it was present.
func (c *ContextCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// InvalidatePhase removes every entry tagged with p and returns how many were dropped.
func (c *ContextCache) InvalidatePhase(p phase.Phase) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && e.PhaseTag == p {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// PurgeExpired drops entries older than the TTL. It is a no-op without a TTL.
func (c *ContextCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return 0
	}

	now := c.now()
	removed := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && c.isExpired(e, now) {
			c.lru.Remove(key)
			removed++
		}
	}
	c.expired += int64(removed)
	return removed
}

// Clear empties the cache. Counters are kept.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.bytes = 0
}

// Len returns the number of cached entries.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns cached keys from least to most recently used.
func (c *ContextCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Stats returns current counters.
func (c *ContextCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:   c.lru.Len(),
		Bytes:     c.bytes,
		MaxBytes:  c.maxBytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *ContextCache) isExpired(e *Entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.CreatedAt) > c.ttl
}
