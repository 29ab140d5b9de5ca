// Package eventbus lets UI code and simulation code talk without holding
// references to each other. Delivery is synchronous and in registration order;
// nothing is buffered, so late subscribers never see earlier emissions.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives the payload of an emission. Payloads are passed as-is.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[Direction]map[Topic][]subscription
}

func New() *Bus {
	return &Bus{
		topics: map[Direction]map[Topic][]subscription{
			ToSimulation: {},
			ToUI:         {},
		},
	}
}

// EmitToSimulation delivers payload to every simulation-side handler of topic.
func (b *Bus) EmitToSimulation(topic Topic, payload any) {
	b.emit(ToSimulation, topic, payload)
}

// EmitToUI delivers payload to every UI-side handler of topic.
func (b *Bus) EmitToUI(topic Topic, payload any) {
	b.emit(ToUI, topic, payload)
}

// OnSimulationEvent registers h for topics emitted towards the simulation.
func (b *Bus) OnSimulationEvent(topic Topic, h Handler) *Subscription {
	return b.subscribe(ToSimulation, topic, h)
}

// OnUIEvent registers h for topics emitted towards the UI.
func (b *Bus) OnUIEvent(topic Topic, h Handler) *Subscription {
	return b.subscribe(ToUI, topic, h)
}

// OffSimulationEvent removes sub. Removing an unknown or released
// subscription, or one taken out with OnUIEvent, is a no-op.
func (b *Bus) OffSimulationEvent(sub *Subscription) {
	b.off(ToSimulation, sub)
}

// OffUIEvent removes sub. Removing an unknown or released subscription, or
// one taken out with OnSimulationEvent, is a no-op.
func (b *Bus) OffUIEvent(sub *Subscription) {
	b.off(ToUI, sub)
}

func (b *Bus) off(d Direction, sub *Subscription) {
	if sub == nil || sub.bus != b || sub.direction != d {
		return
	}
	sub.Release()
}

// HandlerCount returns the number of handlers registered for topic in direction d.
func (b *Bus) HandlerCount(d Direction, topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[d][topic])
}

func (b *Bus) subscribe(d Direction, topic Topic, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[d][topic] = append(b.topics[d][topic], subscription{id: id, handler: h})

	return &Subscription{bus: b, direction: d, topic: topic, id: id}
}

func (b *Bus) unsubscribe(d Direction, topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[d][topic]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		// Copy so an in-flight emission keeps iterating its own snapshot.
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.topics[d], topic)
		} else {
			b.topics[d][topic] = next
		}
		return
	}
}

func (b *Bus) emit(d Direction, topic Topic, payload any) {
	b.mu.Lock()
	subs := b.topics[d][topic]
	b.mu.Unlock()

	for _, s := range subs {
		if !b.registered(d, topic, s.id) {
			continue
		}
		b.deliver(d, topic, s, payload)
	}
}

// registered reports whether id is still subscribed; a handler may release a
// later handler while an emission is in progress.
func (b *Bus) registered(d Direction, topic Topic, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.topics[d][topic] {
		if s.id == id {
			return true
		}
	}
	return false
}

func (b *Bus) deliver(d Direction, topic Topic, s subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "direction", d, "topic", topic, "panic", fmt.Sprint(r))
		}
	}()
	s.handler(payload)
}

// Subscription is the handle returned by the On* methods.
type Subscription struct {
	bus       *Bus
	direction Direction
	topic     Topic
	id        uint64
	once      sync.Once
}

// Release unregisters the handler. Safe to call more than once and on nil.
func (s *Subscription) Release() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.unsubscribe(s.direction, s.topic, s.id)
	})
}
