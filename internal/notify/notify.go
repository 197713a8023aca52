// Package notify implements the in-process change feed that replaces the
// original dashboard's storage-event broadcast: every store publishes an
// event after a successful write, and any listener (HTTP push, Telegram
// notifier) re-reads state when it sees one.
package notify

import "sync"

// Store identifies which store produced an event.
type Store string

const (
	StoreRecipes Store = "recipes"
	StorePlans   Store = "week_plans"
	StoreWorklog Store = "worklog"
)

// Event describes a single persisted change.
type Event struct {
	Store Store
	// Key is the changed entity's identifier: a recipe ID, a week ID,
	// or a worklog entry ID.
	Key string
}

// Broadcaster fans events out to subscribers. Delivery is best-effort:
// a subscriber that falls behind its buffer misses events rather than
// blocking the writer.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener with the given channel buffer size.
// The returned cancel function unregisters the listener and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers e to every subscriber without blocking.
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber buffer full; it will catch up on its next re-read.
		}
	}
}
