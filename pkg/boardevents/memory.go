package boardevents

import (
	"context"
	"sync"
	"time"
)

// MemoryBus is an in-process bus with the same delivery semantics as Redis:
// at-most-once, messages dropped for subscribers that fall behind.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[int]chan []byte
	nextID int
	now    func() time.Time
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan []byte), now: time.Now}
}

// Publish encodes the event and fans it out to current subscribers.
func (b *MemoryBus) Publish(ctx context.Context, kind Kind, payload any) error {
	ev, err := NewEvent(kind, payload, b.now())
	if err != nil {
		return err
	}
	msg, err := ev.Encode()
	if err != nil {
		return err
	}

	b.PublishRaw(msg)
	return nil
}

// PublishRaw fans out an already encoded message, undecodable or not.
func (b *MemoryBus) PublishRaw(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe registers a new subscriber.
func (b *MemoryBus) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := make(chan []byte, subscriptionBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = in
	b.mu.Unlock()

	p, sub, finish := newPump(ctx)

	go func() {
		defer finish()
		defer func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		}()

		for {
			select {
			case <-p.ctx.Done():
				return
			case msg := <-in:
				if !p.deliver(msg) {
					return
				}
			}
		}
	}()

	return sub, nil
}

// Ping always succeeds.
func (b *MemoryBus) Ping(context.Context) error { return nil }

// NopPublisher drops every event. Used when no bus is configured, in which
// case boards only converge on reload.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Kind, any) error { return nil }

func (NopPublisher) Ping(context.Context) error { return nil }
