package mcping

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// StatusCache remembers recent ping results so a burst of commands touching
// the same server reuses one network exchange. Entries expire after the TTL;
// the LRU bound caps memory.
type StatusCache struct {
	lru *expirable.LRU[string, *Status]
}

// NewStatusCache builds a cache holding up to size entries for ttl each.
func NewStatusCache(size int, ttl time.Duration) *StatusCache {
	return &StatusCache{lru: expirable.NewLRU[string, *Status](size, nil, ttl)}
}

func cacheKey(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Get returns the cached status for addr, if present and fresh.
func (c *StatusCache) Get(addr string) (*Status, bool) {
	return c.lru.Get(cacheKey(addr))
}

// Put stores st under addr.
func (c *StatusCache) Put(addr string, st *Status) {
	c.lru.Add(cacheKey(addr), st)
}

// Purge drops every entry.
func (c *StatusCache) Purge() { c.lru.Purge() }

// Len reports the live entry count.
func (c *StatusCache) Len() int { return c.lru.Len() }
