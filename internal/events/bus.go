package events

import (
	"fmt"
	"sync"

	eventbus "github.com/asaskevich/EventBus"
)

// Topic names a payload-free broadcast.
type Topic string

const (
	// CartChanged fires after every cart mutation. Listeners re-read the whole cart.
	CartChanged Topic = "cart:changed"
	// PricingContextChanged fires when the shopper's tier or identity changes. It does
	// not trigger re-aggregation on its own.
	PricingContextChanged Topic = "pricing:context-changed"
)

// Notifier publishes change signals.
type Notifier interface {
	Notify(topic Topic)
}

// Subscriber registers change listeners.
type Subscriber interface {
	Subscribe(topic Topic, fn func()) (unsubscribe func(), err error)
}

// Bus is an injected in-process broadcaster. Each topic has one dispatcher registered
// with EventBus that fans out to the topic's current listeners, so detached listeners
// are dropped instead of accumulating. Handlers run synchronously on the notifying
// goroutine and must not subscribe or unsubscribe from inside a handler.
type Bus struct {
	bus eventbus.Bus

	// regMu orders dispatcher registration; mu guards listeners and is the only lock
	// a dispatcher takes.
	regMu      sync.Mutex
	registered map[Topic]bool

	mu        sync.Mutex
	nextID    uint64
	listeners map[Topic][]listener
}

type listener struct {
	id uint64
	fn func()
}

// NewBus builds an empty bus.
func NewBus() *Bus {
	return &Bus{
		bus:        eventbus.New(),
		registered: map[Topic]bool{},
		listeners:  map[Topic][]listener{},
	}
}

// Subscribe registers fn for topic. The returned func detaches the listener; it is
// safe to call more than once.
func (b *Bus) Subscribe(topic Topic, fn func()) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe %s: handler required", topic)
	}

	b.regMu.Lock()
	defer b.regMu.Unlock()
	if !b.registered[topic] {
		if err := b.bus.Subscribe(string(topic), b.dispatcher(topic)); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
		b.registered[topic] = true
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], listener{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { b.detach(topic, id) }) }, nil
}

func (b *Bus) detach(topic Topic, id uint64) {
	b.regMu.Lock()
	defer b.regMu.Unlock()

	b.mu.Lock()
	current := b.listeners[topic]
	kept := make([]listener, 0, len(current))
	for _, l := range current {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	if len(kept) > 0 {
		b.listeners[topic] = kept
	} else {
		delete(b.listeners, topic)
	}
	b.mu.Unlock()

	if len(kept) == 0 && b.registered[topic] {
		// One dispatcher per topic, so matching by handler pointer is unambiguous.
		_ = b.bus.Unsubscribe(string(topic), b.dispatcher(topic))
		delete(b.registered, topic)
	}
}

func (b *Bus) dispatcher(topic Topic) func() {
	return func() {
		b.mu.Lock()
		snapshot := make([]listener, len(b.listeners[topic]))
		copy(snapshot, b.listeners[topic])
		b.mu.Unlock()

		for _, l := range snapshot {
			l.fn()
		}
	}
}

// Notify broadcasts topic to every active listener.
func (b *Bus) Notify(topic Topic) {
	b.bus.Publish(string(topic))
}

// HasListeners reports whether topic currently has an attached listener.
func (b *Bus) HasListeners(topic Topic) bool {
	return b.bus.HasCallback(string(topic))
}
