// Package registry tracks which live connections each user holds.
package registry

import (
	"slices"
	"sync"

	"github.com/samber/lo"

	"intouch/pkg/interfaces"
)

// Registry maps a user to the set of their live connections. A user has an
// entry only while that set is non-empty.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]map[string]interfaces.Connection // userID -> connectionID -> Connection
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]interfaces.Connection),
	}
}

// Add records conn under userID. It reports true when this made the user go
// from no connections to one. Adding a known connection again is a no-op.
func (r *Registry) Add(userID string, conn interfaces.Connection) (bool, error) {
	if conn == nil {
		return false, ErrNilConnection
	}
	if userID == "" {
		return false, ErrEmptyUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, exists := r.connections[userID]
	if !exists {
		conns = make(map[string]interfaces.Connection)
		r.connections[userID] = conns
	}
	conns[conn.GetConnectionID()] = conn

	return !exists, nil
}

// Remove deletes connectionID from userID's set and reports true when the
// set became empty. Unknown users or connections are ignored.
func (r *Registry) Remove(userID, connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, exists := r.connections[userID]
	if !exists {
		return false
	}
	if _, ok := conns[connectionID]; !ok {
		return false
	}

	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(r.connections, userID)
		return true
	}
	return false
}

// ConnectionsFor returns the user's connection ids, sorted. Unknown users
// yield an empty slice.
func (r *Registry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := lo.Keys(r.connections[userID])
	slices.Sort(ids)
	return ids
}

// Connection looks up one of the user's connections.
func (r *Registry) Connection(userID, connectionID string) (interfaces.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[userID][connectionID]
	return conn, ok
}

// Connections returns a snapshot of the user's connections.
func (r *Registry) Connections(userID string) []interfaces.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.connections[userID])
}

// Users returns every user with at least one connection, sorted.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := lo.Keys(r.connections)
	slices.Sort(users)
	return users
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.connections[userID]
	return ok
}

// Stats returns counts for health reporting.
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, conns := range r.connections {
		total += len(conns)
	}

	return map[string]int{
		"online_users":      len(r.connections),
		"total_connections": total,
	}
}
