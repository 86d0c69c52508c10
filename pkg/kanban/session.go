package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/google/uuid"
)

// Options tunes a session.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session is one viewer's board: one subscription, one cache, one façade
// and one drag coordinator, from Open to Close.
type Session struct {
	id      string
	cache   *Cache
	actions *Actions
	drag    *DragCoordinator
	sub     *boardevents.Subscription
	log     *slog.Logger

	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// Open subscribes to board events, loads the board and then starts applying
// events in arrival order. The subscription is opened before the first read
// and buffers whatever arrives during it; those events are replayed over the
// loaded board, so no change committed after the read is missed. If the
// initial load fails the session is still returned, with the error in
// Status and in the returned error; callers may Reload later.
func Open(ctx context.Context, gw Gateway, subscriber boardevents.Subscriber, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	log = log.With("session_id", id)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub, err := subscriber.Subscribe(runCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to board events: %w", err)
	}

	cache := NewCache()
	actions := NewActions(gw, cache, log)
	s := &Session{
		id:      id,
		cache:   cache,
		actions: actions,
		drag:    NewDragCoordinator(cache, actions),
		sub:     sub,
		log:     log,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	err = actions.Reload(ctx)
	go s.pump(runCtx)
	if err != nil {
		return s, err
	}
	log.Info("board session opened")
	return s, nil
}

func (s *Session) pump(ctx context.Context) {
	defer close(s.stopped)

	events := s.sub.Events()
	errs := s.sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn("skipping undecodable board event", "err", err)
		case ev, ok := <-events:
			if !ok {
				s.log.Warn("board event stream ended")
				s.actions.status.update(func(st *Status) { st.Error = MsgLiveUpdatesLost })
				return
			}
			if err := s.cache.ApplyRemoteEvent(ev); err != nil {
				s.log.Warn("skipping board event", "kind", ev.Kind, "err", err)
				continue
			}
			s.log.Debug("applied board event", "kind", ev.Kind)
		}
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current board.
func (s *Session) Snapshot() Snapshot { return s.cache.Snapshot() }

// Status returns the loading flag and the last error message.
func (s *Session) Status() Status { return s.actions.Status() }

// Actions returns the façade for board mutations.
func (s *Session) Actions() *Actions { return s.actions }

// Drag returns the drag coordinator.
func (s *Session) Drag() *DragCoordinator { return s.drag }

// Cache exposes the view toggles and lookups.
func (s *Session) Cache() *Cache { return s.cache }

// Updates fires (coalesced) whenever the snapshot or status changed.
func (s *Session) Updates() <-chan struct{} { return s.cache.Changes() }

// Stopped is closed once the session no longer applies remote events,
// after Close or when the event stream ends. In the latter case Status
// carries MsgLiveUpdatesLost.
func (s *Session) Stopped() <-chan struct{} { return s.stopped }

// Close ends the subscription and waits for the event pump to exit.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.sub.Close()
		<-s.stopped
		s.log.Info("board session closed")
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
