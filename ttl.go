package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/mo"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

// TTLCache is an in-memory string-keyed store where every entry carries its
// own lifetime. Expired entries are dropped lazily by the read that finds
// them, unless a sweep interval is configured.
type TTLCache[V any] struct {
	Options *TTLCacheOptions

	mu      sync.Mutex
	entries map[string]*CacheEntry[string, V]

	cancelSweep context.CancelFunc
	sweepWg     sync.WaitGroup
	closeOnce   sync.Once
}

// Options passed to NewTTLCache
//
// DefaultTTL: lifetime used by Set. Defaults to DefaultTTL (5 minutes)
// SweepInterval: period of the background expiry sweep. Set to 0 to expire lazily on read only
// Clock: source of the current time. Defaults to time.Now
// Logger: defaults to a no-op logger
// Metrics: defaults to NoopMetrics
type TTLCacheOptions struct {
	DefaultTTL    time.Duration
	SweepInterval time.Duration
	Clock         func() time.Time
	Logger        *zap.Logger
	Metrics       Metrics
}

func (o *TTLCacheOptions) GetTTL() time.Duration {
	if o.DefaultTTL <= 0 {
		return DefaultTTL
	}
	return o.DefaultTTL
}

func (o *TTLCacheOptions) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}

func NewTTLCache[V any](opts *TTLCacheOptions) *TTLCache[V] {
	options := &TTLCacheOptions{}
	if opts != nil {
		*options = *opts
	}
	if options.Logger == nil {
		options.Logger = nopLogger
	}
	if options.Metrics == nil {
		options.Metrics = NoopMetrics{}
	}

	c := &TTLCache[V]{
		Options: options,
		entries: make(map[string]*CacheEntry[string, V]),
	}

	if options.SweepInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancelSweep = cancel
		c.sweepWg.Add(1)
		go c.sweep(ctx, options.SweepInterval)
	}

	return c
}

// Get returns the value stored under key. A missing key and an expired entry
// both report false; an expired entry is removed as a side effect. The value is
// returned as stored, so callers share it with the cache.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		c.Options.Metrics.Miss()
		return zero, false
	}

	if entry.Expired(c.Options.now()) {
		delete(c.entries, key)
		c.Options.Metrics.Expire()
		c.Options.Metrics.Miss()
		c.Options.Logger.Debug("cache entry expired", zap.String("key", key), zap.Duration("ttl", entry.TTL))
		return zero, false
	}

	c.Options.Metrics.Hit()
	return entry.Value, true
}

// Lookup is Get returning an option instead of a value and a flag.
func (c *TTLCache[V]) Lookup(key string) mo.Option[V] {
	value, ok := c.Get(key)
	if !ok {
		return mo.None[V]()
	}
	return mo.Some(value)
}

// Set stores value under key for the default TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.Options.GetTTL())
}

// SetWithTTL stores value under key for ttl, replacing any previous entry
// together with its lifetime.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &CacheEntry[string, V]{
		Key:      key,
		Value:    value,
		StoredAt: c.Options.now(),
		TTL:      ttl,
	}
	c.Options.Metrics.Set()
}

// Remove deletes key. Removing a missing key is a no-op.
func (c *TTLCache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.Options.Metrics.Remove()
	}
}

// RemovePrefix deletes every key starting with prefix and returns how many
// entries were dropped.
func (c *TTLCache[V]) RemovePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			c.Options.Metrics.Remove()
			removed++
		}
	}
	c.Options.Logger.Debug("cache prefix removed", zap.String("prefix", prefix), zap.Int("removed", removed))
	return removed
}

// Clear deletes all entries regardless of their lifetime.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*CacheEntry[string, V])
	c.Options.Metrics.Clear()
	c.Options.Logger.Debug("cache cleared", zap.Int("removed", n))
}

// Len returns the number of stored entries, expired ones included until they
// are read or swept.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns a snapshot of the stored keys in no particular order.
func (c *TTLCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// DeleteExpired removes every expired entry and returns how many were dropped.
func (c *TTLCache[V]) DeleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Options.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
			c.Options.Metrics.Expire()
			removed++
		}
	}
	return removed
}

func (c *TTLCache[V]) sweep(ctx context.Context, interval time.Duration) {
	defer c.sweepWg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.DeleteExpired(); n > 0 {
				c.Options.Logger.Debug("cache sweep", zap.Int("expired", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the background sweep, if any. The cache stays usable.
func (c *TTLCache[V]) Close() {
	c.closeOnce.Do(func() {
		if c.cancelSweep != nil {
			c.cancelSweep()
		}
		c.sweepWg.Wait()
	})
}
