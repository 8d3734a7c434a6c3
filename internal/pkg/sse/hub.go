package sse

import (
	"sync"
	"sync/atomic"
)

// SchedulerChannel receives every shift event regardless of publication.
const SchedulerChannel = "role:scheduler"

// StaffChannel is the channel of a single staff member.
func StaffChannel(staffID string) string {
	return "staff:" + staffID
}

// Event is one server-sent event.
type Event struct {
	Channel string
	Name    string
	Data    any
}

// Hub fans events out to subscribers by channel. Slow subscribers lose
// events instead of blocking publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	dropped     atomic.Int64
	bufferSize  int
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers on every given channel and returns one merged stream
// plus the function that unsubscribes and closes it.
func (h *Hub) Subscribe(channels ...string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	for _, c := range channels {
		if h.subscribers[c] == nil {
			h.subscribers[c] = make(map[chan Event]struct{})
		}
		h.subscribers[c][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, c := range channels {
				delete(h.subscribers[c], ch)
				if len(h.subscribers[c]) == 0 {
					delete(h.subscribers, c)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish delivers the event to every subscriber of its channel without blocking.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.Channel] {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// PublishToMany sends a copy of event to each channel. A subscriber listening
// on several of them receives one copy per channel.
func (h *Hub) PublishToMany(channels []string, event Event) {
	for _, c := range channels {
		e := event
		e.Channel = c
		h.Publish(e)
	}
}

func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// Dropped is the number of events discarded because a subscriber was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
