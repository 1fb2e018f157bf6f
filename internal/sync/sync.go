// Package sync propagates snapshot changes between independent
// execution contexts sharing the same storage key.
//
// The protocol is push-only and best-effort: deliver-at-most-
// effectively-once, no ordering guarantee, no acknowledgment. A dropped
// update is repaired naturally by the next local save re-broadcasting
// current truth.
package sync

import (
	stdsync "sync"

	"github.com/google/uuid"

	"taskpad/internal/kv"
)

// Event is a storage change notification: the key that changed and its
// new serialized value. Notifications with an absent value are not
// processed.
type Event struct {
	Key      string
	NewValue []byte
}

// Notifier delivers storage change events originating from other
// execution contexts.
type Notifier interface {
	// Events returns the notification channel. It is closed when the
	// notifier shuts down.
	Events() <-chan Event

	// Close stops delivery and releases resources.
	Close() error
}

// Bus is an in-process broadcast channel keyed by storage key. Each
// subscriber is identified so a publisher's own writes are not echoed
// back to it, matching how storage change events only fire in other
// contexts.
type Bus struct {
	mu   stdsync.Mutex
	subs map[string]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[string]chan Event{}}
}

// Subscribe registers a new subscriber with a unique identity.
func (b *Bus) Subscribe() *BusSubscription {
	sub := &BusSubscription{
		id:  uuid.NewString(),
		ch:  make(chan Event, 8),
		bus: b,
	}
	b.mu.Lock()
	b.subs[sub.id] = sub.ch
	b.mu.Unlock()
	return sub
}

// Publish delivers an event to every subscriber except the one named by
// from. Delivery is best-effort: a subscriber with a full channel misses
// the event.
func (b *Bus) Publish(from string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		if id == from {
			continue
		}
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// BusSubscription is one subscriber's view of a Bus.
type BusSubscription struct {
	id   string
	ch   chan Event
	bus  *Bus
	once stdsync.Once
}

// ID returns the subscriber's unique identity.
func (s *BusSubscription) ID() string { return s.id }

// Events returns the subscriber's notification channel.
func (s *BusSubscription) Events() <-chan Event { return s.ch }

// Close unsubscribes and closes the notification channel.
func (s *BusSubscription) Close() error {
	s.once.Do(func() { s.bus.unsubscribe(s.id) })
	return nil
}

// BroadcastStore decorates a kv.Store so every successful write is
// published on a Bus for other subscribers in the same process. It is
// both the durable store and the notifier for an execution context.
type BroadcastStore struct {
	inner kv.Store
	bus   *Bus
	sub   *BusSubscription
}

// NewBroadcastStore wraps inner, subscribing to bus for inbound events.
func NewBroadcastStore(inner kv.Store, bus *Bus) *BroadcastStore {
	return &BroadcastStore{inner: inner, bus: bus, sub: bus.Subscribe()}
}

// Get reads from the wrapped store.
func (s *BroadcastStore) Get(key string) ([]byte, bool, error) {
	return s.inner.Get(key)
}

// Set writes to the wrapped store and broadcasts the new value to the
// other subscribers.
func (s *BroadcastStore) Set(key string, value []byte) error {
	if err := s.inner.Set(key, value); err != nil {
		return err
	}
	s.bus.Publish(s.sub.ID(), Event{Key: key, NewValue: value})
	return nil
}

// Delete removes from the wrapped store.
func (s *BroadcastStore) Delete(key string) error {
	return s.inner.Delete(key)
}

// Events returns inbound change notifications from other subscribers.
func (s *BroadcastStore) Events() <-chan Event { return s.sub.Events() }

// Close unsubscribes from the bus.
func (s *BroadcastStore) Close() error { return s.sub.Close() }
