// Package watch implements the live-update side of the assignment store: a
// small in-process hub that fans full per-user snapshots out to subscribers.
//
// The hub replaces the callback-style live query of the original store with
// an explicit subscription abstraction: Subscribe returns a cancelable
// handle carrying a typed channel. Every mutation publishes the complete
// post-commit result set (a snapshot), never an incremental patch, so a
// consumer can atomically swap its view and recompute derived stats without
// tearing.
//
// Delivery semantics:
//   - Each subscriber channel is buffered with depth 1 and coalescing: when
//     a subscriber is slow, a newer snapshot replaces the undelivered one.
//     Observers only ever need the latest state, so dropping intermediate
//     snapshots is correct here.
//   - Publish never blocks the writer.
//   - Close is idempotent and releases the subscriber slot.
package watch

import (
	"sync"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// Snapshot is the full current result set of a live subscription at a point
// in time, ordered by updated_at descending.
type Snapshot []domain.Assignment

// Subscription is a cancelable handle on a user's snapshot stream.
type Subscription struct {
	// C delivers full snapshots. It is closed when the subscription is
	// canceled.
	C <-chan Snapshot

	hub    *Hub
	userID string
	id     uint64
	ch     chan Snapshot
	once   sync.Once
}

// Close cancels the subscription and closes C. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.userID, s.id)
		close(s.ch)
	})
}

// Hub tracks active subscriptions keyed by user. It is safe for concurrent
// use by any number of publishers and subscribers.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]chan Snapshot
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]chan Snapshot)}
}

// Subscribe registers a new snapshot stream for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]chan Snapshot)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	return &Subscription{C: ch, hub: h, userID: userID, id: id, ch: ch}
}

// Publish fans snap out to every subscriber of userID without blocking.
// A pending undelivered snapshot is replaced by the newer one.
func (h *Hub) Publish(userID string, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		select {
		case ch <- snap:
		default:
			// Drain the stale snapshot, then offer the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Subscribers reports how many active subscriptions exist for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// remove deletes a subscriber slot; called from Subscription.Close.
func (h *Hub) remove(userID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.subs[userID]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(h.subs, userID)
		}
	}
}
