package service

import (
	"sync"

	"shop-order-sync/internal/features/orders/domain"
)

// ChangeKind distinguishes what a change event carries.
type ChangeKind string

const (
	// ChangeFullRefresh signals the whole snapshot was replaced.
	ChangeFullRefresh ChangeKind = "full_refresh"
	// ChangeIncremental signals an incremental reconcile was folded in.
	ChangeIncremental ChangeKind = "incremental"
	// ChangeCacheLoaded signals persisted data became available at startup.
	ChangeCacheLoaded ChangeKind = "cache_loaded"
)

// ChangeEvent is broadcast after every successful persist so observers can
// re-render without polling the store themselves.
type ChangeEvent struct {
	// Kind tells observers whether to re-read everything or apply the result.
	Kind ChangeKind `json:"kind"`
	// OrderCount is the size of the authoritative set after the change.
	OrderCount int `json:"order_count"`
	// Result carries the reconcile buckets for incremental changes.
	Result *domain.SyncResult `json:"result,omitempty"`
}

// Broadcaster fans change events out to subscribers. Sends never block a
// sync cycle: a subscriber that stopped draining misses events instead of
// stalling the engine.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ChangeEvent
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan ChangeEvent)}
}

// Subscribe registers a new observer and returns its id and channel.
func (b *Broadcaster) Subscribe() (int, <-chan ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan ChangeEvent, 16)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

// Unsubscribe removes an observer and closes its channel.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Publish delivers the event to every subscriber without blocking.
func (b *Broadcaster) Publish(event ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
