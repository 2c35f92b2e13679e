package permissions

import (
	"fmt"
	"sync"
	"time"

	"mod-bot/model"
)

const (
	cacheKeyPrefix  = "command_permission_fallback"
	defaultCacheTTL = 300 * time.Second
	defaultCacheCap = 2048
)

type cacheEntry struct {
	cmd        *model.PermissionCommand // nil is a cached "no override"
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache is the shared command-permission cache. Entries are keyed per
// guild so contention partitions naturally; a single mutex is enough at
// this request rate. A stale read racing an invalidation is acceptable
// within the TTL window.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]cacheEntry
	now      func() time.Time
}

// NewCache creates a cache with the default TTL and capacity.
func NewCache() *Cache {
	return &Cache{
		ttl:      defaultCacheTTL,
		capacity: defaultCacheCap,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// CacheKey builds the lookup key for a command in a guild.
func CacheKey(guildID, commandName string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, guildID, commandName)
}

// Get returns the cached resolution for the key. The second return value
// distinguishes "not cached" from a cached nil ("no override configured").
func (c *Cache) Get(key string) (*model.PermissionCommand, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.cmd, true
}

// Set stores a resolution (cmd may be nil for "no override").
func (c *Cache) Set(key string, cmd *model.PermissionCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}

	now := c.now()
	c.entries[key] = cacheEntry{
		cmd:        cmd,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
	}
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked frees room: expired entries first, then the oldest
// insertion if the cache is still full. Caller holds the mutex.
func (c *Cache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
