package bridge

import (
	"context"
	"sync"
)

// Handler receives dispatched events. Handlers run on the dispatcher's
// goroutine and must not block.
type Handler func(Event)

// Bus fans bridge events out to subscribers, keyed by event name. It is
// the in-process rendition of the DOM custom-event channel between the
// page realm and the extension realm.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[EventName]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[EventName]map[int]Handler)}
}

// Subscribe registers a handler for one event name. The returned cancel
// func removes it; after cancel returns the handler may still observe at
// most one event already in flight.
func (b *Bus) Subscribe(name EventName, h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[name] == nil {
		b.subs[name] = make(map[int]Handler)
	}
	b.subs[name][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[name], id)
	}
}

// Dispatch delivers the event to every handler subscribed to its name.
func (b *Bus) Dispatch(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[ev.Name()]))
	for _, h := range b.subs[ev.Name()] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Await blocks until an event with the given name arrives for which match
// returns true (nil match accepts any), or until ctx is done.
func (b *Bus) Await(ctx context.Context, name EventName, match func(Event) bool) (Event, error) {
	ch := make(chan Event, 1)
	cancel := b.Subscribe(name, func(ev Event) {
		if match != nil && !match(ev) {
			return
		}
		select {
		case ch <- ev:
		default:
		}
	})
	defer cancel()

	select {
	case ev := <-ch:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
