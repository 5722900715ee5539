package tabsession

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/fitcamp-session/users"
)

// LoginEvent is published after a successful Login, and once by Run when a
// stored session was restored at construction.
type LoginEvent struct {
	User     users.UserProfile
	TabID    string
	Restored bool
}

// LogoutEvent is published after Logout.
type LogoutEvent struct {
	TabID string
}

// hub is a subscriber list for one event type. Handlers run synchronously on
// the publishing goroutine, in subscription order.
type hub[E any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(E)
	order    []int
}

func (h *hub[E]) subscribe(handler func(E)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[int]func(E))
	}
	id := h.nextID
	h.nextID++
	h.handlers[id] = handler
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.handlers, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (h *hub[E]) publish(logger zerolog.Logger, event E) {
	h.mu.Lock()
	handlers := make([]func(E), 0, len(h.order))
	for _, id := range h.order {
		handlers = append(handlers, h.handlers[id])
	}
	h.mu.Unlock()

	for _, handler := range handlers {
		deliver(logger, handler, event)
	}
}

func deliver[E any](logger zerolog.Logger, handler func(E), event E) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Session event handler panicked")
		}
	}()
	handler(event)
}
