package core

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Handler reacts to a change event. A returned error is logged and
// counted; it never stops delivery to other subscribers or the
// reflector feeding the channel. Handlers must treat the event
// payloads as read-only since all subscribers share them.
type Handler[T any] func(ChangeEvent[T]) error

// Subscription is the handle returned by EventChannel.Subscribe.
type Subscription[T any] struct {
	ID   string
	Name string

	handler Handler[T]
	channel *EventChannel[T]
}

// Cancel removes the subscription. An event that is being published
// concurrently may still be delivered once.
func (s *Subscription[T]) Cancel() {
	s.channel.unsubscribe(s.ID)
}

// EventChannel delivers the change events of one resource kind to its
// subscribers. Publish is synchronous: events reach subscribers in the
// order they were published, one at a time.
type EventChannel[T any] struct {
	kind     string
	log      *slog.Logger
	observer Observer

	mu   sync.RWMutex
	subs []*Subscription[T]
}

// NewEventChannel returns an empty channel for the named kind.
func NewEventChannel[T any](kind string, observer Observer) *EventChannel[T] {
	if observer == nil {
		observer = NopObserver{}
	}
	return &EventChannel[T]{
		kind:     kind,
		log:      slog.Default().With("component", "event-channel", "kind", kind),
		observer: observer,
	}
}

// Subscribe registers handler under a human-readable name used in
// logs and metrics.
func (c *EventChannel[T]) Subscribe(name string, handler Handler[T]) *Subscription[T] {
	return c.SubscribeWithReplay(name, handler, nil)
}

// SubscribeWithReplay delivers initial to handler and then registers
// it. Callers must ensure no Publish runs concurrently, otherwise the
// subscriber can miss or duplicate an event; ResourceCache.Subscribe
// does this.
func (c *EventChannel[T]) SubscribeWithReplay(name string, handler Handler[T], initial []ChangeEvent[T]) *Subscription[T] {
	sub := &Subscription[T]{
		ID:      uuid.NewString(),
		Name:    name,
		handler: handler,
		channel: c,
	}
	for _, ev := range initial {
		c.deliver(sub, ev)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	c.log.Debug("subscriber added", "subscriber", name, "id", sub.ID, "replayed", len(initial))
	return sub
}

func (c *EventChannel[T]) unsubscribe(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = slices.DeleteFunc(c.subs, func(s *Subscription[T]) bool {
		return s.ID == id
	})
}

// Len returns the number of active subscriptions.
func (c *EventChannel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Publish delivers ev to every current subscriber.
func (c *EventChannel[T]) Publish(ev ChangeEvent[T]) {
	c.mu.RLock()
	subs := slices.Clone(c.subs)
	c.mu.RUnlock()

	c.observer.ObserveEvent(c.kind, ev.Type)

	for _, sub := range subs {
		c.deliver(sub, ev)
	}
}

// deliver invokes one handler, isolating the caller from its errors
// and panics.
func (c *EventChannel[T]) deliver(sub *Subscription[T], ev ChangeEvent[T]) {
	err := safeCall(sub.handler, ev)
	if err == nil {
		return
	}
	c.observer.ObserveHandlerError(c.kind, sub.Name)
	c.log.Error("subscriber failed",
		"subscriber", sub.Name,
		"event", ev.Type,
		"key", ev.Key.String(),
		"error", err,
	)
}

func safeCall[T any](h Handler[T], ev ChangeEvent[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ev)
}
