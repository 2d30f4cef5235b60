package events

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// EventListener processes events
type EventListener interface {
	HandleEvent(event Event) error
	Priority() int
	ID() string
}

// ListenerFunc adapts a function to EventListener
type ListenerFunc struct {
	Name  string
	Order int
	Fn    func(Event) error
}

func (l *ListenerFunc) HandleEvent(event Event) error { return l.Fn(event) }
func (l *ListenerFunc) Priority() int                 { return l.Order }
func (l *ListenerFunc) ID() string                    { return l.Name }

// Publisher is the emitting half of the bus, which services depend on
type Publisher interface {
	Emit(event Event) error
}

// Bus delivers battle events synchronously, lowest priority value first
type Bus struct {
	listeners map[EventType][]EventListener
	mu        sync.RWMutex
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[EventType][]EventListener),
	}
}

func (b *Bus) sortLocked(eventType EventType) {
	sort.SliceStable(b.listeners[eventType], func(i, j int) bool {
		return b.listeners[eventType][i].Priority() < b.listeners[eventType][j].Priority()
	})
}

// Subscribe adds a listener for one event type
func (b *Bus) Subscribe(eventType EventType, listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[eventType] = append(b.listeners[eventType], listener)
	b.sortLocked(eventType)
}

// SubscribeAll adds a listener for several event types
func (b *Bus) SubscribeAll(listener EventListener, eventTypes ...EventType) {
	for _, t := range eventTypes {
		b.Subscribe(t, listener)
	}
}

// Unsubscribe removes a listener
func (b *Bus) Unsubscribe(eventType EventType, listenerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners := b.listeners[eventType]
	for i, l := range listeners {
		if l.ID() != listenerID {
			continue
		}
		b.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
		return
	}
}

// Emit sends an event to every listener of its type. Propagation stops when
// a listener cancels the event or returns an error.
func (b *Bus) Emit(event Event) error {
	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners[event.GetType()]))
	copy(listeners, b.listeners[event.GetType()])
	b.mu.RUnlock()

	for _, listener := range listeners {
		if event.IsCancelled() {
			log.Printf("EventBus: Event %s for battle %s cancelled, stopping propagation",
				event.GetType(), event.GetBattleID())
			break
		}

		if err := listener.HandleEvent(event); err != nil {
			return fmt.Errorf("listener %s failed: %w", listener.ID(), err)
		}
	}

	return nil
}

// Count returns how many listeners are subscribed to an event type
func (b *Bus) Count(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

// Clear removes all listeners
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = make(map[EventType][]EventListener)
}
