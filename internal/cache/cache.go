// Package cache holds upstream chart payloads for a short time so repeated
// lookups of the same symbol and window do not hit the rate-limited relay.
package cache

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// entry wraps a payload with expiry and insertion order tracking.
type entry struct {
	body      []byte
	expiry    time.Time
	insertIdx int64
}

// PayloadCache maps an upstream URL to its raw response body.
// Thread-safe with sync.RWMutex. A zero TTL disables caching.
type PayloadCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a PayloadCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *PayloadCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &PayloadCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// MakeKey builds a cache key from an upstream URL. Query parameters are
// re-encoded in sorted order so equivalent URLs share an entry.
func MakeKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = u.Query().Encode()
	return u.String()
}

// Enabled reports whether entries are kept at all.
func (c *PayloadCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns a cached payload if found and not expired.
func (c *PayloadCache) Get(key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.body, true
}

// Set stores a payload. Evicts the oldest entry if at capacity.
func (c *PayloadCache) Set(key string, body []byte) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		body:      body,
		expiry:    c.now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// InvalidateSymbol drops every entry whose URL mentions the chart path for symbol.
func (c *PayloadCache) InvalidateSymbol(symbol string) {
	if c == nil {
		return
	}
	needle := "/chart/" + url.PathEscape(strings.ToUpper(symbol))

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.Contains(key, needle) || strings.Contains(key, url.QueryEscape(needle)) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *PayloadCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *PayloadCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
