// Package cache implements the in-memory TTL cache used to serve repeated
// history and dashboard reads without hitting SQLite. Thread-safe, with
// periodic cleanup of expired items.
//
// Usage:
//
//	c := cache.NewCache(5*time.Minute, 10*time.Minute)
//	c.Set("history:42:p1:s10", page)
//	if v, found := c.Get("history:42:p1:s10"); found {
//	    return v
//	}
package cache

import (
	"sync"
	"time"
)

// CacheItem holds a cached value together with its expiration timestamp.
type CacheItem struct {
	Value      interface{}
	Expiration int64 // Unix nanoseconds, 0 means no expiry
}

// Cache is a thread-safe key-value store with per-item TTL.
type Cache struct {
	items             map[string]CacheItem
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan bool
}

// NewCache creates a cache with a default TTL. cleanupInterval controls how
// often expired items are swept out.
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	cache := &Cache{
		items:             make(map[string]CacheItem),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan bool),
	}

	go cache.startCleanupTimer()

	return cache
}

// Set stores a value with the default expiration.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL stores a value with an explicit expiration duration.
func (c *Cache) SetWithTTL(key string, value interface{}, duration time.Duration) {
	var expiration int64

	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = CacheItem{
		Value:      value,
		Expiration: expiration,
	}
	c.mu.Unlock()
}

// Get retrieves a value. Returns (value, true) when present and fresh,
// (nil, false) when absent or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}

	return item.Value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key starting with the given prefix. Used to
// invalidate a user's cached pages after a new record write, e.g.
// "history:42:" drops every page cached for user 42.
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
			count++
		}
	}
	return count
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]CacheItem)
	c.mu.Unlock()
}

// Count returns the number of items, expired ones included.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CacheStats summarizes cache occupancy.
type CacheStats struct {
	TotalItems   int `json:"total_items"`
	ExpiredItems int `json:"expired_items"`
	ValidItems   int `json:"valid_items"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalItems: len(c.items),
	}

	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}

	return stats
}

func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop halts the cleanup goroutine.
func (c *Cache) Stop() {
	c.stopCleanup <- true
}

// ============================================================================
// CACHE PRESETS
// ============================================================================

var (
	// HistoryCache holds paginated patient-history responses per user/page
	// (TTL: 5 minutes). Invalidated by prefix when new records are written.
	HistoryCache *Cache

	// DashboardCache holds per-user dashboard summaries (TTL: 5 minutes).
	DashboardCache *Cache
)

// InitCaches initializes the preset caches.
func InitCaches() {
	HistoryCache = NewCache(5*time.Minute, 10*time.Minute)
	DashboardCache = NewCache(5*time.Minute, 10*time.Minute)
}

// GetAllCacheStats returns statistics for every preset cache.
func GetAllCacheStats() map[string]CacheStats {
	stats := make(map[string]CacheStats)
	if HistoryCache != nil {
		stats["history"] = HistoryCache.GetStats()
	}
	if DashboardCache != nil {
		stats["dashboard"] = DashboardCache.GetStats()
	}
	return stats
}

// ClearAllCaches empties every preset cache.
func ClearAllCaches() {
	if HistoryCache != nil {
		HistoryCache.Clear()
	}
	if DashboardCache != nil {
		DashboardCache.Clear()
	}
}

// StopCaches halts all preset caches.
func StopCaches() {
	if HistoryCache != nil {
		HistoryCache.Stop()
	}
	if DashboardCache != nil {
		DashboardCache.Stop()
	}
}
