package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SynchronizedCache is a TTLCache whose invalidations are shared with other
// processes through an InvalidationBus. Reads and writes stay local.
type SynchronizedCache[V any] struct {
	local *TTLCache[V]
	bus   *InvalidationBus
}

type SynchronizedCacheOptions[V any] struct {
	Local *TTLCache[V]
	Bus   *InvalidationBus
}

func NewSynchronizedCache[V any](options *SynchronizedCacheOptions[V]) *SynchronizedCache[V] {
	if options.Local == nil {
		panic("Local must be provided")
	}
	if options.Bus == nil {
		panic("Bus must be provided")
	}

	c := &SynchronizedCache[V]{
		local: options.Local,
		bus:   options.Bus,
	}
	c.bus.AddCallback(c.apply)
	return c
}

func (c *SynchronizedCache[V]) apply(event CacheEvent) {
	c.local.Options.Logger.Debug("applying remote invalidation",
		zap.Stringer("type", event.Type),
		zap.String("origin", event.Origin),
	)
	switch event.Type {
	case CacheEventRemove:
		c.local.Remove(event.Key)
	case CacheEventRemovePrefix:
		c.local.RemovePrefix(event.Prefix)
	case CacheEventClear:
		c.local.Clear()
	}
}

func (c *SynchronizedCache[V]) Local() *TTLCache[V] {
	return c.local
}

func (c *SynchronizedCache[V]) Get(key string) (V, bool) {
	return c.local.Get(key)
}

func (c *SynchronizedCache[V]) Set(key string, value V) {
	c.local.Set(key, value)
}

func (c *SynchronizedCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.local.SetWithTTL(key, value, ttl)
}

// Remove drops key locally, then asks every other process to do the same.
func (c *SynchronizedCache[V]) Remove(ctx context.Context, key string) error {
	c.local.Remove(key)
	return c.bus.PublishRemove(ctx, key)
}

func (c *SynchronizedCache[V]) RemovePrefix(ctx context.Context, prefix string) error {
	c.local.RemovePrefix(prefix)
	return c.bus.PublishRemovePrefix(ctx, prefix)
}

func (c *SynchronizedCache[V]) Clear(ctx context.Context) error {
	c.local.Clear()
	return c.bus.PublishClear(ctx)
}
