package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func newTestSynchronizedCache(t *testing.T, s *miniredis.Miniredis) *SynchronizedCache[string] {
	return NewSynchronizedCache[string](&SynchronizedCacheOptions[string]{
		Local: NewTTLCache[string](nil),
		Bus:   newTestBus(t, s),
	})
}

func TestSynchronized(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	cacheOne := newTestSynchronizedCache(t, s)
	cacheTwo := newTestSynchronizedCache(t, s)

	cacheOne.Set("foo", "bar")
	cacheTwo.Set("foo", "baz")

	// values stay local
	value, ok := cacheOne.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", value)
	value, ok = cacheTwo.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, "baz", value)

	err := cacheOne.Remove(ctx, "foo")
	assert.Nil(t, err)

	_, ok = cacheOne.Get("foo")
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := cacheTwo.Get("foo")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSynchronizedRemovePrefix(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	cacheOne := newTestSynchronizedCache(t, s)
	cacheTwo := newTestSynchronizedCache(t, s)

	for _, c := range []*SynchronizedCache[string]{cacheOne, cacheTwo} {
		c.Set("foo", "bar")
		c.Set("fizz", "buzz")
		c.SetWithTTL("prefix:one", "1", time.Hour)
		c.SetWithTTL("prefix:two", "2", time.Hour)
		c.Set("other:one", "x")
	}

	err := cacheOne.RemovePrefix(ctx, "prefix:")
	assert.Nil(t, err)
	assert.Equal(t, 3, cacheOne.Local().Len())

	assert.Eventually(t, func() bool {
		return cacheTwo.Local().Len() == 3
	}, time.Second, 5*time.Millisecond)

	assertValue := func(key, expected string) {
		val, ok := cacheTwo.Get(key)
		assert.True(t, ok, "expected key %q to be in local cache", key)
		assert.Equal(t, expected, val)
	}
	assertValue("foo", "bar")
	assertValue("fizz", "buzz")
	assertValue("other:one", "x")
}

func TestSynchronizedClear(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	cacheOne := newTestSynchronizedCache(t, s)
	cacheTwo := newTestSynchronizedCache(t, s)

	cacheOne.Set("a", "1")
	cacheTwo.Set("a", "1")
	cacheTwo.Set("b", "2")

	err := cacheOne.Clear(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 0, cacheOne.Local().Len())

	assert.Eventually(t, func() bool {
		return cacheTwo.Local().Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSynchronizedRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() {
		NewSynchronizedCache[string](&SynchronizedCacheOptions[string]{})
	})
	assert.Panics(t, func() {
		NewSynchronizedCache[string](&SynchronizedCacheOptions[string]{Local: NewTTLCache[string](nil)})
	})
}
