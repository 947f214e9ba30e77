package catalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Caller TTL policy for composed views.
const (
	TTLAggregate = 24 * time.Hour
	TTLEvents    = 5 * time.Minute
	TTLSearch    = 3 * time.Minute
	TTLFallback  = time.Minute
)

const tracerName = "github.com/mxcd/go-ttlcache/catalog"

// Store is the part of a TTL cache the memoizer needs. *cache.TTLCache[any]
// and *cache.SynchronizedCache[any] both satisfy it, and both can also be
// invalidated through Service. Other stores make the Service invalidation
// calls fail with ErrInvalidationUnsupported.
type Store interface {
	Get(key string) (any, bool)
	SetWithTTL(key string, value any, ttl time.Duration)
}

// Memoizer wraps loads from the gateway with a cache-aside lookup.
//
// With SingleFlight enabled, concurrent misses on the same key share one load.
// The shared load is not cancelled when the caller that started it goes away.
// Without it every miss loads independently and the last write wins.
type Memoizer struct {
	store        Store
	singleFlight bool
	group        singleflight.Group
	tracer       trace.Tracer
	logger       *zap.Logger
}

func NewMemoizer(store Store, singleFlight bool, logger *zap.Logger) *Memoizer {
	if store == nil {
		panic("Store must be provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memoizer{
		store:        store,
		singleFlight: singleFlight,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// Memoize returns the value cached under key, or loads it and caches it for
// ttl. Failed loads are returned to the caller and never cached.
func Memoize[V any](ctx context.Context, m *Memoizer, key string, ttl time.Duration, load func(context.Context) (V, error)) (V, error) {
	return MemoizeFunc(ctx, m, key, func(ctx context.Context) (V, time.Duration, error) {
		v, err := load(ctx)
		return v, ttl, err
	})
}

// MemoizeFunc is Memoize for loads that pick their own TTL, such as degraded
// results that should expire sooner.
func MemoizeFunc[V any](ctx context.Context, m *Memoizer, key string, load func(context.Context) (V, time.Duration, error)) (V, error) {
	ctx, span := m.tracer.Start(ctx, "catalog.memoize", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if cached, ok := m.store.Get(key); ok {
		if v, ok := cached.(V); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return v, nil
		}
		m.logger.Warn("cached value has unexpected type, reloading", zap.String("key", key))
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	fetch := func(ctx context.Context) (any, error) {
		v, ttl, err := load(ctx)
		if err != nil {
			return v, err
		}
		m.store.SetWithTTL(key, v, ttl)
		return v, nil
	}

	var (
		result any
		err    error
	)
	if m.singleFlight {
		// The shared load outlives any single caller; each caller stops
		// waiting when its own context is done.
		shared := context.WithoutCancel(ctx)
		ch := m.group.DoChan(key, func() (any, error) {
			return fetch(shared)
		})
		select {
		case res := <-ch:
			result, err = res.Val, res.Err
			span.SetAttributes(attribute.Bool("cache.shared", res.Shared))
		case <-ctx.Done():
			err = ctx.Err()
		}
	} else {
		result, err = fetch(ctx)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero V
		return zero, err
	}
	v, _ := result.(V)
	return v, nil
}
