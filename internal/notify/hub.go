// Package notify keeps recent runtime notifications and fans them out to sinks.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hktproto/hktmcp/internal/logx"
)

// DefaultCapacity is the number of notifications kept for inspection.
const DefaultCapacity = 100

const queueSize = 256

// Event is one runtime notification.
type Event struct {
	Seq      uint64          `json:"seq"`
	Method   string          `json:"method,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Received time.Time       `json:"received"`
}

// Sink receives every published event in order.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Stats summarizes hub activity.
type Stats struct {
	Total    uint64 `json:"total"`
	Dropped  uint64 `json:"dropped"`
	Buffered int    `json:"buffered"`
	Sinks    int    `json:"sinks"`
}

// Hub stores the last N events in a ring and forwards them to sinks through a
// bounded queue so publishers never block.
type Hub struct {
	mu      sync.Mutex
	ring    []Event
	start   int
	count   int
	seq     uint64
	dropped uint64
	closed  bool

	sinks []Sink
	queue chan Event
	done  chan struct{}
}

// NewHub returns a hub keeping capacity events (DefaultCapacity when <= 0).
func NewHub(capacity int, sinks ...Sink) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &Hub{ring: make([]Event, capacity), sinks: sinks, done: make(chan struct{})}
	if len(sinks) == 0 {
		close(h.done)
		return h
	}
	h.queue = make(chan Event, queueSize)
	go h.forward()
	return h
}

// Publish records e and queues it for the sinks. The sequence number and,
// when unset, the receive time are assigned here.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.seq++
	e.Seq = h.seq
	if e.Received.IsZero() {
		e.Received = time.Now()
	}
	idx := (h.start + h.count) % len(h.ring)
	h.ring[idx] = e
	if h.count < len(h.ring) {
		h.count++
	} else {
		h.start = (h.start + 1) % len(h.ring)
	}
	if h.queue != nil {
		select {
		case h.queue <- e:
		default:
			h.dropped++
		}
	}
	h.mu.Unlock()
	logx.Log.Debug().Uint64("seq", e.Seq).Str("method", e.Method).Msg("runtime notification")
}

// Recent returns up to n events, oldest first. n <= 0 returns all kept events.
func (h *Hub) Recent(n int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > h.count {
		n = h.count
	}
	out := make([]Event, 0, n)
	for i := h.count - n; i < h.count; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

// Stats returns counters for status reporting.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Total: h.seq, Dropped: h.dropped, Buffered: h.count, Sinks: len(h.sinks)}
}

func (h *Hub) forward() {
	defer close(h.done)
	for e := range h.queue {
		for _, s := range h.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Publish(ctx, e); err != nil {
				logx.Log.Warn().Err(err).Str("sink", s.Name()).Uint64("seq", e.Seq).Msg("notification sink failed")
			}
			cancel()
		}
	}
}

// Close stops accepting events, drains the queue and closes the sinks.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	if h.queue != nil {
		close(h.queue)
	}
	h.mu.Unlock()

	var errs []error
	select {
	case <-h.done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	for _, s := range h.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
