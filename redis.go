package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var ErrChannelRequired = errors.New("go-ttlcache: Channel is required for the invalidation bus")

// InvalidationBus broadcasts removals and clears between processes over a
// Redis pub/sub channel. Only invalidations travel on the bus; cached values
// stay local to each process.
type InvalidationBus struct {
	Options *InvalidationBusOptions
	Client  *redis.Client

	origin       string
	callbacks    []func(CacheEvent)
	callbacksMu  sync.RWMutex
	cancelPubSub context.CancelFunc
	pubSubWg     sync.WaitGroup
	subscribed   chan struct{}
}

type InvalidationBusOptions struct {
	RedisOptions *redis.Options
	Channel      string
	Logger       *zap.Logger
}

func NewInvalidationBus(opts *InvalidationBusOptions) (*InvalidationBus, error) {
	options := *opts
	if options.Channel == "" {
		return nil, ErrChannelRequired
	}
	if options.Logger == nil {
		options.Logger = nopLogger
	}

	client := redis.NewClient(options.RedisOptions)

	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(client); err != nil {
		client.Close()
		return nil, err
	}

	origin, err := newOrigin()
	if err != nil {
		client.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &InvalidationBus{
		Options:      &options,
		Client:       client,
		origin:       origin,
		cancelPubSub: cancel,
		subscribed:   make(chan struct{}),
	}

	b.pubSubWg.Add(1)
	go b.listen(ctx)

	return b, nil
}

func newOrigin() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate bus origin: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Origin identifies this bus on the channel. Events carrying it are not
// delivered back to the publisher.
func (b *InvalidationBus) Origin() string {
	return b.origin
}

// Subscribed is closed once the first subscription is confirmed by Redis.
func (b *InvalidationBus) Subscribed() <-chan struct{} {
	return b.subscribed
}

func (b *InvalidationBus) AddCallback(callback func(CacheEvent)) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = append(b.callbacks, callback)
}

func (b *InvalidationBus) PublishRemove(ctx context.Context, key string) error {
	return b.Publish(ctx, CacheEvent{Type: CacheEventRemove, Key: key})
}

func (b *InvalidationBus) PublishRemovePrefix(ctx context.Context, prefix string) error {
	return b.Publish(ctx, CacheEvent{Type: CacheEventRemovePrefix, Prefix: prefix})
}

func (b *InvalidationBus) PublishClear(ctx context.Context) error {
	return b.Publish(ctx, CacheEvent{Type: CacheEventClear})
}

func (b *InvalidationBus) Publish(ctx context.Context, event CacheEvent) error {
	event.Origin = b.origin
	data, err := msgpack.Marshal(&event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	return b.Client.Publish(ctx, b.Options.Channel, data).Err()
}

func (b *InvalidationBus) listen(ctx context.Context) {
	defer b.pubSubWg.Done()
	backoff := 100 * time.Millisecond
	maxBackoff := 10 * time.Second
	var subscribedOnce sync.Once

	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := b.Client.Subscribe(ctx, b.Options.Channel)
		if _, err := pubsub.Receive(ctx); err == nil {
			subscribedOnce.Do(func() { close(b.subscribed) })
			b.consume(ctx, pubsub, &backoff)
		} else if ctx.Err() == nil {
			b.Options.Logger.Warn("go-ttlcache: subscribe failed", zap.String("channel", b.Options.Channel), zap.Error(err))
		}
		pubsub.Close()

		select {
		case <-time.After(backoff):
			if backoff < maxBackoff {
				backoff *= 2
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *InvalidationBus) consume(ctx context.Context, pubsub *redis.PubSub, backoff *time.Duration) {
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				b.Options.Logger.Warn("go-ttlcache: pubsub error, reconnecting", zap.Error(err))
			}
			return
		}

		*backoff = 100 * time.Millisecond

		var event CacheEvent
		if err := msgpack.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.Options.Logger.Error("go-ttlcache: error unmarshalling cache event message", zap.Error(err))
			continue
		}
		if event.Origin == b.origin {
			continue
		}

		b.callbacksMu.RLock()
		for _, callback := range b.callbacks {
			callback(event)
		}
		b.callbacksMu.RUnlock()
	}
}

func (b *InvalidationBus) Close() error {
	b.cancelPubSub()
	// Close client to unblock any TCP reads in the PubSub goroutine,
	// then wait for the goroutine to finish.
	err := b.Client.Close()
	b.pubSubWg.Wait()
	return err
}
