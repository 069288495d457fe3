// Package events dispatches "feedback received" notifications to any number
// of registered listeners.
//
// The submission pipeline is the default subscriber. Other collaborators
// (for example the SQS relay) subscribe under their own id and receive the
// same event. Listeners run synchronously in subscription order; a failing
// listener is logged and does not stop the others.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/afrigis/user-feedback/internal/model"
)

// FeedbackReceived is the name of the event fired for every accepted submission.
const FeedbackReceived = "feedback.received"

var (
	// ErrSubscriberExists is returned when Subscribe is called with a duplicate id.
	ErrSubscriberExists = errors.New("subscriber id already exists")

	// ErrSubscriberNotFound is returned when Unsubscribe is called with unknown id.
	ErrSubscriberNotFound = errors.New("subscriber id not found")

	// ErrBusClosed is returned when operations are attempted on a closed bus.
	ErrBusClosed = errors.New("bus is closed")
)

// Event carries one submission to listeners.
type Event struct {
	Name       string
	Submission *model.FeedbackSubmission
	ReceivedAt time.Time
}

// Listener reacts to an event.
type Listener interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev Event) error

func (f ListenerFunc) HandleEvent(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Stats is a snapshot of bus counters.
type Stats struct {
	Published   uint64
	Delivered   uint64
	Failed      uint64
	Subscribers int
}

type subscriber struct {
	id       string
	listener Listener
}

// Bus is a typed, in-process event bus.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	closed bool

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers l under id.
func (b *Bus) Subscribe(id string, l Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	for _, s := range b.subs {
		if s.id == id {
			return ErrSubscriberExists
		}
	}
	b.subs = append(b.subs, subscriber{id: id, listener: l})
	return nil
}

// Unsubscribe removes the listener registered under id.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriberNotFound
}

// Publish delivers ev to every listener. It returns ErrBusClosed after Close;
// listener failures are only logged.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	if ev.Name == "" {
		ev.Name = FeedbackReceived
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}
	b.published.Add(1)

	for _, s := range subs {
		if err := s.listener.HandleEvent(ctx, ev); err != nil {
			b.failed.Add(1)
			slog.Error("event listener failed",
				"event", ev.Name,
				"subscriber", s.id,
				"submission_id", submissionID(ev),
				"error", err,
			)
			continue
		}
		b.delivered.Add(1)
	}
	return nil
}

// Stats returns current counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:   b.published.Load(),
		Delivered:   b.delivered.Load(),
		Failed:      b.failed.Load(),
		Subscribers: n,
	}
}

// Close stops the bus. Further Subscribe/Unsubscribe/Publish calls return ErrBusClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.closed = true
	b.subs = nil
	return nil
}

func submissionID(ev Event) string {
	if ev.Submission == nil {
		return ""
	}
	return ev.Submission.ID
}
