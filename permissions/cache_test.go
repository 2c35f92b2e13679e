package permissions

import (
	"fmt"
	"testing"
	"time"

	"mod-bot/model"
)

func newTestCache(ttl time.Duration, capacity int) (*Cache, *time.Time) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Cache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]cacheEntry),
		now:      func() time.Time { return current },
	}
	return c, &current
}

func TestCacheTTLExpiry(t *testing.T) {
	c, clock := newTestCache(300*time.Second, 10)
	key := CacheKey("guild-1", "ban")

	c.Set(key, &model.PermissionCommand{CommandName: "ban", RequiredRank: 3})
	if cmd, ok := c.Get(key); !ok || cmd == nil || cmd.RequiredRank != 3 {
		t.Fatalf("expected fresh hit, got cmd=%+v ok=%v", cmd, ok)
	}

	*clock = clock.Add(299 * time.Second)
	if _, ok := c.Get(key); !ok {
		t.Fatal("entry expired before TTL elapsed")
	}

	*clock = clock.Add(2 * time.Second)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry survived past TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped, len=%d", c.Len())
	}
}

func TestCacheStoresNilResolution(t *testing.T) {
	c, _ := newTestCache(300*time.Second, 10)
	key := CacheKey("guild-1", "warn")

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Set(key, nil)
	cmd, ok := c.Get(key)
	if !ok {
		t.Fatal("cached nil resolution not distinguishable from a miss")
	}
	if cmd != nil {
		t.Fatalf("expected cached nil, got %+v", cmd)
	}
}

func TestCacheCapacityEviction(t *testing.T) {
	c, clock := newTestCache(300*time.Second, 3)

	for i := 0; i < 3; i++ {
		c.Set(CacheKey("guild-1", fmt.Sprintf("cmd-%d", i)), nil)
		*clock = clock.Add(time.Second)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}

	// At capacity with nothing expired: the oldest insertion goes.
	c.Set(CacheKey("guild-1", "cmd-3"), nil)
	if c.Len() != 3 {
		t.Fatalf("expected capacity held at 3, got %d", c.Len())
	}
	if _, ok := c.Get(CacheKey("guild-1", "cmd-0")); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.Get(CacheKey("guild-1", "cmd-3")); !ok {
		t.Fatal("newest entry missing after eviction")
	}

	// Expired entries are reclaimed before any live one is dropped.
	*clock = clock.Add(400 * time.Second)
	c.Set(CacheKey("guild-1", "cmd-4"), nil)
	if _, ok := c.Get(CacheKey("guild-1", "cmd-4")); !ok {
		t.Fatal("entry written after expiry sweep is missing")
	}
	if c.Len() != 1 {
		t.Fatalf("expected only the fresh entry to survive, got %d", c.Len())
	}
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(300*time.Second, 10)
	key := CacheKey("guild-1", "ban")

	c.Set(key, &model.PermissionCommand{CommandName: "ban", RequiredRank: 3})
	c.Invalidate(key)
	if _, ok := c.Get(key); ok {
		t.Fatal("invalidated entry still cached")
	}
}
