package cache

import (
	"time"
)

// DefaultTTL is applied by Set when the caller does not pick a lifetime.
const DefaultTTL = 5 * time.Minute

// CacheEntry is a single stored value together with the lifetime it was
// written with.
type CacheEntry[K comparable, V any] struct {
	Key      K
	Value    V
	StoredAt time.Time
	TTL      time.Duration
}

// Expired reports whether the entry is past its lifetime at now. An entry read
// at exactly StoredAt+TTL is still valid.
func (e *CacheEntry[K, V]) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}

type CacheEventType int

const (
	CacheEventRemove CacheEventType = iota
	CacheEventRemovePrefix
	CacheEventClear
)

func (t CacheEventType) String() string {
	switch t {
	case CacheEventRemove:
		return "remove"
	case CacheEventRemovePrefix:
		return "remove_prefix"
	case CacheEventClear:
		return "clear"
	default:
		return "unknown"
	}
}

// CacheEvent describes an invalidation that should be applied to every
// process sharing the same key space.
type CacheEvent struct {
	Type   CacheEventType `msgpack:"type"`
	Key    string         `msgpack:"key,omitempty"`
	Prefix string         `msgpack:"prefix,omitempty"`
	Origin string         `msgpack:"origin"`
}
