package service

import (
	"sync"

	"property-intake/internal/chat"
)

const subscriberBuffer = 16

// EventHub fans out state snapshots to the subscribers of a session
type EventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan chat.State
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[string]map[int]chan chat.State)}
}

// Subscribe returns a snapshot channel and a cancel func that closes it
func (h *EventHub) Subscribe(sessionID string) (<-chan chat.State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan chat.State, subscriberBuffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan chat.State)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[sessionID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.subs, sessionID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers state to every subscriber. A subscriber whose buffer is full misses the snapshot.
func (h *EventHub) Publish(sessionID string, state chat.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		select {
		case ch <- state.Clone():
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for a session
func (h *EventHub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}
