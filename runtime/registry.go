// Package runtime holds the relay and its process-wide state: who is
// connected, and what history has already been fetched. It orchestrates
// delivery without containing transport or storage logic.
package runtime

import (
	"sync"

	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
)

type presence struct {
	conn   domain.ConnectionID
	userID string
	sink   contract.EventSink
}

// Registry maps live connections to user identities. A user may hold
// several entries at once (multi-device); a connection holds at most one.
// Registration order is kept so that first-match delivery is deterministic
// instead of a map-iteration artifact.
type Registry struct {
	mu      sync.RWMutex
	order   []domain.ConnectionID
	entries map[domain.ConnectionID]*presence
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ConnectionID]*presence)}
}

// Register inserts or overwrites the entry for conn. Overwriting keeps the
// connection's original position in the registration order.
func (r *Registry) Register(conn domain.ConnectionID, userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[conn]; ok {
		existing.userID = userID
		existing.sink = sink
		return
	}
	r.entries[conn] = &presence{conn: conn, userID: userID, sink: sink}
	r.order = append(r.order, conn)
}

// Unregister removes the entry if present; absent connections are a no-op.
func (r *Registry) Unregister(conn domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[conn]; !ok {
		return
	}
	delete(r.entries, conn)
	for i, c := range r.order {
		if c == conn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// OnlineUsers returns the registered identities in registration order.
// Duplicates are preserved: a user connected twice appears twice.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(conn domain.ConnectionID, _ int) string {
		return r.entries[conn].userID
	})
}

// FindSink returns the sink of the earliest registered connection for the
// identity. With several devices online only that one receives direct
// messages, a limitation carried over from the source system.
func (r *Registry) FindSink(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conn := range r.order {
		if e := r.entries[conn]; e.userID == userID {
			return e.sink, true
		}
	}
	return nil, false
}

// Sinks returns every registered sink except those of the given connections,
// in registration order. Used for presence and media-status broadcasts.
func (r *Registry) Sinks(except ...domain.ConnectionID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := make(map[domain.ConnectionID]struct{}, len(except))
	for _, c := range except {
		excluded[c] = struct{}{}
	}

	var sinks []contract.EventSink
	for _, conn := range r.order {
		if _, skip := excluded[conn]; skip {
			continue
		}
		sinks = append(sinks, r.entries[conn].sink)
	}
	return sinks
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
