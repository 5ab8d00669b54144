package runtime

import (
	"sync"

	"care-chat/contract"
	"care-chat/domain"
)

// Connection is one live entry of the registry: a logical identity bound to
// its delivery sink. Viewing is meaningful for the doctor only and tracks
// which session is currently open in the doctor's client.
type Connection struct {
	UserID  string
	Role    domain.Role
	Viewing domain.ChatID
	Sink    contract.EventSink
}

// Connections maps a user identifier to its live connection. At most one
// entry per identity: a reconnect for the same userID replaces the previous
// entry (last writer wins) without closing the old transport, which dies on
// its own.
type Connections struct {
	mu      sync.RWMutex
	entries map[string]*Connection
}

func NewConnections() *Connections {
	return &Connections{entries: make(map[string]*Connection)}
}

// Register inserts or replaces the entry for userID. A replaced doctor
// entry does not migrate its viewing field: fresh connects start with no
// session in view.
func (c *Connections) Register(userID string, role domain.Role, sink contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = &Connection{UserID: userID, Role: role, Sink: sink}
}

func (c *Connections) Lookup(userID string) (*Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.entries[userID]
	return conn, ok
}

// Unregister removes the entry; idempotent.
func (c *Connections) Unregister(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// SetViewing records the session the doctor's client currently displays.
// It is replaced by later calls and cleared only by disconnect.
func (c *Connections) SetViewing(userID string, chatID domain.ChatID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.entries[userID]; ok {
		conn.Viewing = chatID
	}
}

// Viewing reports the chat currently open for userID, or "" if the user is
// offline or has no chat in view.
func (c *Connections) Viewing(userID string) domain.ChatID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if conn, ok := c.entries[userID]; ok {
		return conn.Viewing
	}
	return ""
}
