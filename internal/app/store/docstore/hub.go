// internal/app/store/docstore/hub.go
package docstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// EventType says what happened to a document.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is a committed change. Data is the new snapshot (nil on delete).
type Event struct {
	Type       EventType
	Collection string
	ID         string
	Data       bson.Raw
}

// Decode unmarshals the snapshot into v.
func (e Event) Decode(v any) error {
	return bson.Unmarshal(e.Data, v)
}

const defaultSubscriptionBuffer = 16

// Hub fans committed changes out to subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	log    *zap.Logger
	buffer int
	closed bool
}

// NewHub creates a hub. buffer <= 0 uses the default.
func NewHub(logger *zap.Logger, buffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		log:    logger,
		buffer: buffer,
	}
}

// Subscription receives events for one document, or a whole collection
// when id is empty.
type Subscription struct {
	hub  *Hub
	coll string
	id   string
	ch   chan Event
	once sync.Once
}

// Subscribe registers interest in coll/id. Call Close to release it.
func (h *Hub) Subscribe(coll, id string) *Subscription {
	s := &Subscription{hub: h, coll: coll, id: id, ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		s.once.Do(func() {})
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Events is closed when the subscription or the hub is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		delete(s.hub.subs, s)
		close(s.ch)
	})
}

func (s *Subscription) wants(ev Event) bool {
	return s.coll == ev.Collection && (s.id == "" || s.id == ev.ID)
}

// Publish delivers ev to matching subscribers.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.log.Warn("subscriber buffer full; dropping event",
				zap.String("collection", ev.Collection),
				zap.String("id", ev.ID),
				zap.String("type", string(ev.Type)))
		}
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		s.closeLocked()
	}
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Events raised inside a unit of work are held until it commits.             |
*─────────────────────────────────────────────────────────────────────────────*/

type pendingKey struct{}

type pending struct {
	mu     sync.Mutex
	events []Event
}

func withPending(ctx context.Context) (context.Context, *pending) {
	p := &pending{}
	return context.WithValue(ctx, pendingKey{}, p), p
}

func pendingFrom(ctx context.Context) *pending {
	p, _ := ctx.Value(pendingKey{}).(*pending)
	return p
}

func (p *pending) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

func (p *pending) flush(h *Hub) {
	p.mu.Lock()
	events := p.events
	p.events = nil
	p.mu.Unlock()
	for _, ev := range events {
		h.Publish(ev)
	}
}

// emit publishes ev now, or queues it if ctx is inside a unit of work.
func emit(ctx context.Context, h *Hub, ev Event) {
	if p := pendingFrom(ctx); p != nil {
		p.mu.Lock()
		p.events = append(p.events, ev)
		p.mu.Unlock()
		return
	}
	h.Publish(ev)
}
