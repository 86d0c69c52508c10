package boardevents

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus publishes and subscribes over Redis pub/sub. It is safe for
// concurrent use.
type RedisBus struct {
	rdb       *redis.Client
	namespace string
	now       func() time.Time
}

// NewRedisBus creates a bus for namespace. Boards sharing a namespace see
// each other's changes.
func NewRedisBus(opts *redis.Options, namespace string) (*RedisBus, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisBus{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
		now:       time.Now,
	}, nil
}

// NewRedisBusFromURL parses a redis:// URL and creates a bus.
func NewRedisBusFromURL(rawURL, namespace string) (*RedisBus, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisBus(opts, namespace)
}

// Close closes the Redis connection.
func (b *RedisBus) Close() error {
	return b.rdb.Close()
}

// Ping verifies Redis connectivity.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Publish sends one event. payload is the full entity, or boardsdk.DeletedID
// for deletions.
func (b *RedisBus) Publish(ctx context.Context, kind Kind, payload any) error {
	ev, err := NewEvent(kind, payload, b.now())
	if err != nil {
		return err
	}

	msg, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.rdb.Publish(ctx, Channel(b.namespace), msg).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}
	return nil
}

// Subscribe subscribes to the namespace's topic. The subscription is
// confirmed by Redis before Subscribe returns, so no event published after
// it returns is missed.
func (b *RedisBus) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, Channel(b.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	p, sub, finish := newPump(ctx)

	go func() {
		defer finish()
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-p.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !p.deliver([]byte(msg.Payload)) {
					return
				}
			}
		}
	}()

	return sub, nil
}
