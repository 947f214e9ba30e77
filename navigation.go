package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NavigationCache keeps composed page view models between page transitions.
// Unlike TTLCache it is bounded and every entry shares one lifetime.
type NavigationCache[K comparable, V any] struct {
	Options *NavigationCacheOptions[K]
	Cache   *expirable.LRU[string, *CacheEntry[K, V]]
}

// Options passed to NewNavigationCache
//
// TTL: Time to live for each entry in the cache. Set to 0 to disable expiration
// Size: Maximum number of entries in the cache. Set to 0 for unlimited size
type NavigationCacheOptions[K comparable] struct {
	TTL      time.Duration
	Size     int
	CacheKey CacheKey[K]
}

func (o *NavigationCacheOptions[K]) GetTTL() time.Duration {
	return o.TTL
}

func (o *NavigationCacheOptions[K]) GetSize() int {
	return o.Size
}

func (o *NavigationCacheOptions[K]) GetCacheKey() CacheKey[K] {
	return o.CacheKey
}

func NewNavigationCache[K comparable, V any](options *NavigationCacheOptions[K]) *NavigationCache[K, V] {
	if options.CacheKey == nil {
		panic("CacheKey must be provided")
	}
	cache := expirable.NewLRU[string, *CacheEntry[K, V]](options.Size, nil, options.TTL)
	return &NavigationCache[K, V]{
		Cache:   cache,
		Options: options,
	}
}

func (c *NavigationCache[K, V]) Get(key K) (V, bool) {
	var zero V
	entry, ok := c.Cache.Get(c.Options.CacheKey.Marshal(key))
	if !ok || entry == nil {
		return zero, false
	}
	return entry.Value, true
}

// Set stores value and reports whether an older entry was evicted to make
// room for it.
func (c *NavigationCache[K, V]) Set(key K, value V) bool {
	return c.Cache.Add(c.Options.CacheKey.Marshal(key), &CacheEntry[K, V]{
		Key:      key,
		Value:    value,
		StoredAt: time.Now(),
		TTL:      c.Options.TTL,
	})
}

func (c *NavigationCache[K, V]) Remove(key K) bool {
	return c.Cache.Remove(c.Options.CacheKey.Marshal(key))
}

func (c *NavigationCache[K, V]) Contains(key K) bool {
	return c.Cache.Contains(c.Options.CacheKey.Marshal(key))
}

func (c *NavigationCache[K, V]) Purge() {
	c.Cache.Purge()
}

func (c *NavigationCache[K, V]) Len() int {
	return c.Cache.Len()
}

// Entries returns the live entries, oldest first.
func (c *NavigationCache[K, V]) Entries() []CacheEntry[K, V] {
	values := c.Cache.Values()
	entries := make([]CacheEntry[K, V], 0, len(values))
	for _, entry := range values {
		entries = append(entries, *entry)
	}
	return entries
}
