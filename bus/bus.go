// Package bus is an in-process publish/subscribe channel for cross-component
// notifications.
//
// Delivery is synchronous and ordered by subscription. A handler that
// publishes while a dispatch is running has its event queued; the queue is
// drained by the outer dispatcher once the current event has reached every
// handler.
package bus

import (
	"fmt"
	"sync"

	"github.com/eonplay/eonplay/log"
	"github.com/samber/lo"
)

// ID identifies a subscription.
type ID uint64

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id        ID
	eventType string
	handler   Handler
}

// Bus routes events to subscribers keyed by event type.
type Bus struct {
	mu          sync.Mutex
	nextID      ID
	subs        []subscription
	queue       []Event
	dispatching bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

var (
	defaultBus  *Bus
	defaultOnce sync.Once
)

// Default returns the process-wide bus.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = NewBus()
	})
	return defaultBus
}

// Subscribe registers handler for eventType and returns its id.
func (b *Bus) Subscribe(eventType string, handler Handler) ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, eventType: eventType, handler: handler})
	return b.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = lo.Reject(b.subs, func(s subscription, _ int) bool {
		return s.id == id
	})
}

// Clear drops every subscription and any queued events.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = nil
	b.queue = nil
}

// Publish delivers event to every handler subscribed to its type.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.dispatching = false
			b.mu.Unlock()
			return
		}
		next := b.queue[0]
		b.queue = b.queue[1:]
		targets := lo.Filter(b.subs, func(s subscription, _ int) bool {
			return s.eventType == next.Type
		})
		b.mu.Unlock()

		for _, s := range targets {
			b.deliver(s, next)
		}
	}
}

// Subscribers returns the number of handlers registered for eventType.
func (b *Bus) Subscribers(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return lo.CountBy(b.subs, func(s subscription) bool {
		return s.eventType == eventType
	})
}

func (b *Bus) deliver(s subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.For("bus").
				WithField("event", event.Type).
				WithField("subscription", s.id).
				Error(fmt.Sprintf("panic in event handler: %v", r))
		}
	}()

	s.handler(event)
}
