package validation

import (
	"container/list"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andyoucreate/rilaykit/model"
)

// CacheConfig tunes the validation result cache. Zero values fall back to the
// defaults below.
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration // idle time since last access
	MaxAge  time.Duration // absolute age since insertion
}

const (
	defaultCacheMaxSize = 1000
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheMaxAge  = 30 * time.Minute
)

// CacheStats is a point-in-time view of cache activity.
type CacheStats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type cacheEntry struct {
	key          string
	value        model.ValidationResult
	timestamp    time.Time // insertion/update time, checked against MaxAge
	lastAccessed time.Time // checked against TTL
	accessCount  int
}

// Cache is a bounded, TTL-aware cache of validation results keyed by
// (form, field, serialized value). Entries expire on two independent clocks:
// absolute age and idle time. Expired entries are deleted lazily when
// observed by Get/Has; Cleanup is the only proactive sweep.
//
// Eviction on insert prefers the first expired entry found while scanning
// access order, and falls back to the least-recently-used entry. The O(n)
// scan is acceptable for the target sizes (hundreds to low thousands).
type Cache struct {
	mu        sync.Mutex
	maxSize   int
	ttl       time.Duration
	maxAge    time.Duration
	entries   map[string]*list.Element
	order     *list.List // front = least recently used
	hits      uint64
	misses    uint64
	evictions uint64
	now       func() time.Time
}

// NewCache creates a Cache with the given configuration.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultCacheMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultCacheMaxAge
	}
	return &Cache{
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		maxAge:  cfg.MaxAge,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// GenerateKey builds the composite cache key for a (form, field, value)
// triple.
func GenerateKey(formID, fieldID string, value any) string {
	return formID + ":" + fieldID + ":" + serializeValue(value)
}

// serializeValue renders a value into a stable key fragment: primitives by
// their string form, everything else as JSON with an "[object]" fallback for
// values that cannot be marshalled (circular references and the like).
func serializeValue(value any) string {
	switch value.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(value)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "[object]"
	}
	return string(data)
}

// Get returns the cached result for key. An expired entry is treated as
// absent and deleted as a side effect.
func (c *Cache) Get(key string) (model.ValidationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return model.ValidationResult{}, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.expired(entry) {
		c.removeElement(elem)
		c.misses++
		return model.ValidationResult{}, false
	}

	entry.lastAccessed = c.now()
	entry.accessCount++
	c.order.MoveToBack(elem)
	c.hits++
	return entry.value, true
}

// Has reports whether key has an unexpired entry. Like Get it deletes an
// expired entry on observation, but it does not refresh access order.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.expired(elem.Value.(*cacheEntry)) {
		c.removeElement(elem)
		return false
	}
	return true
}

// Set stores a result for key, evicting one entry when the cache is full.
func (c *Cache) Set(key string, value model.ValidationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.timestamp = now
		entry.lastAccessed = now
		c.order.MoveToBack(elem)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOne()
	}

	entry := &cacheEntry{key: key, value: value, timestamp: now, lastAccessed: now}
	c.entries[key] = c.order.PushBack(entry)
}

// Delete removes key. It reports whether an entry was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// ClearForm removes all entries belonging to a form.
func (c *Cache) ClearForm(formID string) {
	c.clearPrefix(formID + ":")
}

// ClearField removes all entries for one field of a form.
func (c *Cache) ClearField(formID, fieldID string) {
	c.clearPrefix(formID + ":" + fieldID + ":")
}

func (c *Cache) clearPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if strings.HasPrefix(elem.Value.(*cacheEntry).key, prefix) {
			c.removeElement(elem)
		}
		elem = next
	}
}

// Cleanup proactively removes every expired entry and returns the count.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if c.expired(elem.Value.(*cacheEntry)) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Stats returns a snapshot of cache activity counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// expired checks both clocks: absolute age and idle time.
func (c *Cache) expired(entry *cacheEntry) bool {
	now := c.now()
	return now.Sub(entry.timestamp) > c.maxAge || now.Sub(entry.lastAccessed) > c.ttl
}

// evictOne prefers the first expired entry in access order, falling back to
// the least recently used entry at the front.
func (c *Cache) evictOne() {
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if c.expired(elem.Value.(*cacheEntry)) {
			c.removeElement(elem)
			c.evictions++
			return
		}
	}
	if front := c.order.Front(); front != nil {
		c.removeElement(front)
		c.evictions++
	}
}

func (c *Cache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*cacheEntry).key)
}
