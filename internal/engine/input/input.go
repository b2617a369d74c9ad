// Package input defines the pointer and lifecycle events delivered to
// gallery containers and the bus that dispatches them.
package input

import (
	"sync"

	"github.com/Faultbox/buildings-gallery/internal/runloop"
)

// EventType identifies an event kind.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventPointerMove
	EventPointerEnter
	EventPointerLeave
	EventPointerDown
	EventPointerUp
	EventWheel
	EventClick
	// EventRemove is dispatched when a container leaves the layout.
	EventRemove
)

var typeNames = [...]string{
	EventNone:         "none",
	EventQuit:         "quit",
	EventResize:       "resize",
	EventKeyDown:      "keydown",
	EventPointerMove:  "pointermove",
	EventPointerEnter: "pointerenter",
	EventPointerLeave: "pointerleave",
	EventPointerDown:  "pointerdown",
	EventPointerUp:    "pointerup",
	EventWheel:        "wheel",
	EventClick:        "click",
	EventRemove:       "remove",
}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Key codes carried in Event.Key. Values are SDL scancodes.
const (
	KeyEscape = 41
	KeyS      = 22
)

// Event is a processed input event. Pointer coordinates are in the
// receiver's space: window pixels when polled, container-local pixels once
// routed to a container.
type Event struct {
	Type   EventType
	X, Y   int
	Width  int
	Height int
	Key    int
	Button uint8
	// WheelY is the vertical scroll amount for EventWheel.
	WheelY float32
}

// Handler receives an event.
type Handler func(Event)

type listener struct {
	id uint64
	fn Handler
}

// Bus fans events out to handlers registered per event type.
type Bus struct {
	mu        sync.Mutex
	listeners map[EventType][]listener
	nextID    uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[EventType][]listener)}
}

// Subscribe registers fn for events of type t. Canceling the subscription
// removes the handler.
func (b *Bus) Subscribe(t EventType, fn Handler) *runloop.Subscription {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[t] = append(b.listeners[t], listener{id: id, fn: fn})
	b.mu.Unlock()

	return runloop.NewSubscription(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.listeners[t]
		for i, l := range ls {
			if l.id == id {
				b.listeners[t] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(b.listeners[t]) == 0 {
			delete(b.listeners, t)
		}
	})
}

// Dispatch delivers e to the handlers registered for its type at the time
// of the call. Handlers may subscribe or cancel during dispatch.
func (b *Bus) Dispatch(e Event) {
	b.mu.Lock()
	ls := append([]listener(nil), b.listeners[e.Type]...)
	b.mu.Unlock()

	for _, l := range ls {
		if b.active(e.Type, l.id) {
			l.fn(e)
		}
	}
}

func (b *Bus) active(t EventType, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.listeners[t] {
		if l.id == id {
			return true
		}
	}
	return false
}

// Count returns the number of handlers for t.
func (b *Bus) Count(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[t])
}

// Total returns the number of handlers across all types.
func (b *Bus) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ls := range b.listeners {
		n += len(ls)
	}
	return n
}
