package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Stream names a push feed that display clients subscribe to.
type Stream string

const (
	StreamTimer  Stream = "timer"
	StreamGameID Stream = "gameId"
)

// Streams lists every push feed.
var Streams = []Stream{StreamTimer, StreamGameID}

// Observer is notified of subscriber and broadcast activity.
type Observer interface {
	SetSubscribers(stream string, n int)
	ObserveBroadcast(stream string, delivered, dropped int)
}

type noopObserver struct{}

func (noopObserver) SetSubscribers(string, int) {}
func (noopObserver) ObserveBroadcast(string, int, int) {}

// Subscriber is one client attached to a stream.
type Subscriber struct {
	ID          string
	Stream      Stream
	Transport   string
	Send        chan []byte
	ConnectedAt time.Time

	closeOnce sync.Once
}

// Hub tracks subscribers per stream and fans frames out to them.
type Hub struct {
	subscribers map[Stream]map[*Subscriber]bool
	mu          sync.RWMutex

	bufferSize int
	observer   Observer
	closed     bool
}

// NewHub creates a hub whose subscribers buffer up to bufferSize frames.
func NewHub(bufferSize int, observer Observer) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Hub{
		subscribers: make(map[Stream]map[*Subscriber]bool),
		bufferSize:  bufferSize,
		observer:    observer,
	}
}

// Subscribe attaches a new subscriber to stream.
func (h *Hub) Subscribe(stream Stream, transport string) *Subscriber {
	sub := &Subscriber{
		ID:          uuid.New().String(),
		Stream:      stream,
		Transport:   transport,
		Send:        make(chan []byte, h.bufferSize),
		ConnectedAt: time.Now(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.closeOnce.Do(func() { close(sub.Send) })
		return sub
	}
	if h.subscribers[stream] == nil {
		h.subscribers[stream] = make(map[*Subscriber]bool)
	}
	h.subscribers[stream][sub] = true
	count := len(h.subscribers[stream])
	h.mu.Unlock()

	h.observer.SetSubscribers(string(stream), count)
	log.Info().
		Str("subscriber_id", sub.ID).
		Str("stream", string(stream)).
		Str("transport", transport).
		Int("total_subscribers", count).
		Msg("subscriber connected")
	return sub
}

// Unsubscribe detaches sub and closes its Send channel. It is safe to call repeatedly.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	subs, ok := h.subscribers[sub.Stream]
	removed := false
	if ok && subs[sub] {
		delete(subs, sub)
		removed = true
		if len(subs) == 0 {
			delete(h.subscribers, sub.Stream)
		}
	}
	count := len(h.subscribers[sub.Stream])
	sub.closeOnce.Do(func() { close(sub.Send) })
	h.mu.Unlock()

	if removed {
		h.observer.SetSubscribers(string(sub.Stream), count)
		log.Info().
			Str("subscriber_id", sub.ID).
			Str("stream", string(sub.Stream)).
			Dur("connected_for", time.Since(sub.ConnectedAt)).
			Msg("subscriber disconnected")
	}
}

// Broadcast queues frame for every subscriber of stream. Subscribers whose buffer is
// full are disconnected. It returns the number of subscribers reached.
func (h *Hub) Broadcast(stream Stream, frame []byte) int {
	var slow []*Subscriber
	delivered := 0

	// Send channels are only closed under the write lock.
	h.mu.RLock()
	for sub := range h.subscribers[stream] {
		select {
		case sub.Send <- frame:
			delivered++
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		log.Warn().
			Str("subscriber_id", sub.ID).
			Str("stream", string(stream)).
			Msg("subscriber buffer full, disconnecting")
		h.Unsubscribe(sub)
	}

	h.observer.ObserveBroadcast(string(stream), delivered, len(slow))
	return delivered
}

// Close disconnects every subscriber by closing its Send channel. Later subscribers are
// closed immediately, so stream handlers return and the server can shut down.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var subs []*Subscriber
	for _, stream := range h.subscribers {
		for sub := range stream {
			subs = append(subs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.Unsubscribe(sub)
	}
	log.Info().Int("subscribers", len(subs)).Msg("hub closed")
}

// Count returns the number of subscribers on stream.
func (h *Hub) Count(stream Stream) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[stream])
}

// Stats returns subscriber counts per stream.
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := map[string]int{"total": 0}
	for _, stream := range Streams {
		n := len(h.subscribers[stream])
		stats[string(stream)] = n
		stats["total"] += n
	}
	return stats
}
