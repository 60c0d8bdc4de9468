// Package broadcast fans live messages out to connected viewers. Delivery
// is best effort and at most once; a failing subscriber never affects the
// others or the publisher.
package broadcast

import (
	"context"
	"crypto/rand"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/metrics"
)

// Message types not derived from bus events.
const (
	TypeDiscussion = "discussion.message"
)

// Message is one broadcast item.
type Message struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	WorkflowID string    `json:"workflowId,omitempty"`
	Agent      string    `json:"agent,omitempty"`
	Text       string    `json:"text,omitempty"`
	Sequence   int       `json:"sequence,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Subscriber receives broadcast messages.
type Subscriber interface {
	// Name identifies the subscriber kind for metrics and logs.
	Name() string

	// Send delivers one message. It must not block for long.
	Send(ctx context.Context, msg Message) error
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewMessageID returns a fresh, time-ordered message identifier.
func NewMessageID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}

// Hub is the set of live subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]Subscriber
	nextID uint64
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subs: make(map[uint64]Subscriber), logger: logger}
}

// Subscribe adds s and returns a function that removes it.
func (h *Hub) Subscribe(s Subscriber) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = s
	n := len(h.subs)
	h.mu.Unlock()

	metrics.UpdateBroadcastClients(n)
	h.logger.Debug("broadcast subscriber added", "subscriber", s.Name(), "count", n)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			n := len(h.subs)
			h.mu.Unlock()
			metrics.UpdateBroadcastClients(n)
		})
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish sends msg to every subscriber and returns how many accepted it.
// Per-subscriber errors are logged and dropped.
func (h *Hub) Publish(ctx context.Context, msg Message) int {
	if msg.ID == "" {
		msg.ID = NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if err := s.Send(ctx, msg); err != nil {
			metrics.RecordBroadcastDrop()
			h.logger.Debug("broadcast delivery failed", "subscriber", s.Name(), "type", msg.Type, "error", err)
			continue
		}
		metrics.RecordBroadcast(s.Name())
		delivered++
	}
	return delivered
}

// CollectMetrics updates the subscriber gauge.
func (h *Hub) CollectMetrics(ctx context.Context) error {
	metrics.UpdateBroadcastClients(h.Len())
	return nil
}

var relayedPrefixes = []string{"workflow.", "bucket.", "context.", "manifest."}

// RelayBus forwards workflow, bucket, context and manifest events from bus
// to subscribers. The returned function stops relaying.
func (h *Hub) RelayBus(ctx context.Context, bus events.Bus) func() {
	return bus.SubscribeAll(func(e events.Event) {
		if !relayed(e.Type) {
			return
		}
		h.Publish(ctx, Message{Type: string(e.Type), Payload: e.Payload, Timestamp: e.Timestamp})
	})
}

func relayed(t events.EventType) bool {
	for _, p := range relayedPrefixes {
		if strings.HasPrefix(string(t), p) {
			return true
		}
	}
	return false
}
