package boardevents

import (
	"context"
	"sync"
)

// Publisher announces committed changes.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, payload any) error
}

// Subscriber opens subscriptions to the topic.
type Subscriber interface {
	Subscribe(ctx context.Context) (*Subscription, error)
}

const subscriptionBuffer = 64

// Subscription represents an active subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan Event
	errors <-chan error
	cancel func()
	done   <-chan struct{}
	once   sync.Once
}

// Events returns the channel of decoded events. It is closed when the
// subscription is closed, its context is cancelled or the transport drops.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Errors returns undecodable-message errors. The subscription keeps going
// after an error; errors are dropped if nobody drains this channel.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and waits for its goroutine to exit.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

// pump is the receiving end shared by every transport. It owns the events
// and errors channels and closes them on return.
type pump struct {
	ctx    context.Context
	events chan Event
	errors chan error
}

func newPump(ctx context.Context) (*pump, *Subscription, func()) {
	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p := &pump{
		ctx:    subCtx,
		events: make(chan Event, subscriptionBuffer),
		errors: make(chan error, subscriptionBuffer),
	}
	sub := &Subscription{
		events: p.events,
		errors: p.errors,
		cancel: cancel,
		done:   done,
	}
	finish := func() {
		close(p.events)
		close(p.errors)
		close(done)
	}
	return p, sub, finish
}

// deliver decodes payload and hands it to the consumer. It returns false
// once the subscription is cancelled.
func (p *pump) deliver(payload []byte) bool {
	ev, err := Decode(payload)
	if err != nil {
		select {
		case p.errors <- err:
		default:
		}
		return p.ctx.Err() == nil
	}

	select {
	case p.events <- ev:
		return true
	case <-p.ctx.Done():
		return false
	}
}
