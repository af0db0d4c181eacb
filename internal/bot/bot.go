// Package bot provides an in-process event bot: an ordered registry of event
// names with a chain of handlers per event.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownEvent is returned when an event is not in the bot's registry.
var ErrUnknownEvent = errors.New("unknown event")

// Handler processes a payload and returns the payload passed to the next
// handler in the chain.
type Handler[P any] func(ctx context.Context, payload P) (P, error)

// HandlerID identifies a registered handler so it can be removed with Off.
type HandlerID uint64

type registration[P any] struct {
	id      HandlerID
	handler Handler[P]
}

// Bot dispatches webhook payloads to registered handlers.
// It is safe for concurrent use.
type Bot[P any] struct {
	events []string

	mu       sync.RWMutex
	nextID   HandlerID
	handlers map[string][]registration[P]
}

// New creates a bot that knows the given events. With no arguments the
// GitHub webhook event list is used.
func New[P any](events ...string) *Bot[P] {
	if len(events) == 0 {
		events = GitHubEvents
	}

	known := make([]string, 0, len(events))
	for _, e := range events {
		if e != "" && !slices.Contains(known, e) {
			known = append(known, e)
		}
	}

	return &Bot[P]{
		events:   known,
		handlers: make(map[string][]registration[P]),
	}
}

// Events returns the known event names in registration order.
func (b *Bot[P]) Events() []string {
	return slices.Clone(b.events)
}

// Knows reports whether event is in the registry.
func (b *Bot[P]) Knows(event string) bool {
	return slices.Contains(b.events, event)
}

// On appends handler to the chain for event.
func (b *Bot[P]) On(event string, handler Handler[P]) (HandlerID, error) {
	if !b.Knows(event) {
		return 0, fmt.Errorf("on %q: %w", event, ErrUnknownEvent)
	}
	if handler == nil {
		return 0, fmt.Errorf("on %q: nil handler", event)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], registration[P]{id: id, handler: handler})
	return id, nil
}

// Off removes a handler previously registered with On. Unknown IDs are ignored.
func (b *Bot[P]) Off(event string, id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = slices.DeleteFunc(b.handlers[event], func(reg registration[P]) bool {
		return reg.id == id
	})
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
	}
}

// Handlers returns the number of handlers registered for event.
func (b *Bot[P]) Handlers(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}

// Dispatch runs the handler chain for event. Each handler receives the result
// of the previous one; with no handlers the payload is returned unchanged.
// The first handler error stops the chain and is returned as is.
func (b *Bot[P]) Dispatch(ctx context.Context, event string, payload P) (P, error) {
	if !b.Knows(event) {
		var zero P
		return zero, fmt.Errorf("dispatch %q: %w", event, ErrUnknownEvent)
	}

	// Snapshot so handlers may call On/Off without deadlocking.
	b.mu.RLock()
	chain := slices.Clone(b.handlers[event])
	b.mu.RUnlock()

	result := payload
	for _, reg := range chain {
		next, err := reg.handler(ctx, result)
		if err != nil {
			var zero P
			return zero, err
		}
		result = next
	}
	return result, nil
}
