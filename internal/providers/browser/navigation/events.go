package navigation

import (
	"sync"
	"time"
)

// Event types raised by the controller.
const (
	EventHashChange = "hashchange"
	EventPopState   = "popstate"
	EventLoad       = "load"
)

// AnyEvent registers a listener for every event type.
const AnyEvent = "*"

// Event is one navigation event. OldURL and NewURL are set for hashchange,
// State for popstate, NewURL for load.
type Event struct {
	Type     string    `json:"type"`
	WindowID string    `json:"window_id"`
	OldURL   string    `json:"old_url,omitempty"`
	NewURL   string    `json:"new_url,omitempty"`
	State    any       `json:"state,omitempty"`
	Time     time.Time `json:"time"`
}

// Dispatcher receives events once the controller has committed the change
// that produced them.
type Dispatcher interface {
	Dispatch(ev Event)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ev Event)

func (f DispatcherFunc) Dispatch(ev Event) { f(ev) }

// ListenerFunc handles a dispatched event.
type ListenerFunc func(ev Event)

// ListenerID identifies a registered listener. Function values cannot be
// compared, so removal goes through the id.
type ListenerID uint64

type listenerEntry struct {
	id       ListenerID
	listener ListenerFunc
	once     bool
}

// EventTarget is the default Dispatcher: listeners keyed by event type,
// called synchronously in registration order. Safe for concurrent use.
type EventTarget struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    ListenerID
}

// NewEventTarget creates an empty target.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]listenerEntry),
		nextID:    1,
	}
}

// AddListener registers fn for eventType, or for every type with AnyEvent.
func (et *EventTarget) AddListener(eventType string, fn ListenerFunc) ListenerID {
	return et.add(eventType, fn, false)
}

// AddListenerOnce registers fn to run for the next matching event only.
func (et *EventTarget) AddListenerOnce(eventType string, fn ListenerFunc) ListenerID {
	return et.add(eventType, fn, true)
}

func (et *EventTarget) add(eventType string, fn ListenerFunc, once bool) ListenerID {
	if fn == nil {
		return 0
	}
	et.mu.Lock()
	defer et.mu.Unlock()
	id := et.nextID
	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], listenerEntry{id: id, listener: fn, once: once})
	return id
}

// RemoveListener removes a listener by id.
func (et *EventTarget) RemoveListener(eventType string, id ListenerID) bool {
	et.mu.Lock()
	defer et.mu.Unlock()
	entries := et.listeners[eventType]
	for i, e := range entries {
		if e.id == id {
			et.listeners[eventType] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners for eventType.
func (et *EventTarget) ListenerCount(eventType string) int {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return len(et.listeners[eventType])
}

// Dispatch runs the listeners registered for ev.Type, then the AnyEvent
// listeners. Listeners added during dispatch see the next event.
func (et *EventTarget) Dispatch(ev Event) {
	for _, e := range et.snapshot(ev.Type) {
		e.listener(ev)
	}
	for _, e := range et.snapshot(AnyEvent) {
		e.listener(ev)
	}
}

// snapshot copies the listeners for eventType and drops the once entries.
func (et *EventTarget) snapshot(eventType string) []listenerEntry {
	et.mu.Lock()
	defer et.mu.Unlock()
	entries := et.listeners[eventType]
	if len(entries) == 0 {
		return nil
	}
	out := append([]listenerEntry(nil), entries...)
	kept := entries[:0]
	for _, e := range entries {
		if !e.once {
			kept = append(kept, e)
		}
	}
	et.listeners[eventType] = kept
	return out
}
