package realtime

import (
	"sync"

	"github.com/NijasTp/trainup-sub002/internal/metrics"
)

// Registry maps user ids to live connections. Every authenticated socket
// is auto-subscribed here; it backs the personal channel used for
// out-of-band notification pushes.
type Registry struct {
	mu      sync.RWMutex
	clients map[int]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[int]*Client)}
}

// Add registers the connection, displacing any previous socket for the
// same user.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	prev := r.clients[c.UserID]
	r.clients[c.UserID] = c
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	metrics.ActiveConnections.Inc()
}

func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	current, ok := r.clients[c.UserID]
	if ok && current == c {
		delete(r.clients, c.UserID)
	}
	r.mu.Unlock()

	if ok && current == c {
		metrics.ActiveConnections.Dec()
	}
}

func (r *Registry) Get(userID int) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// PushToUser delivers on the personal channel. False means the user has
// no live socket.
func (r *Registry) PushToUser(userID int, event string, data any) bool {
	c, ok := r.Get(userID)
	if !ok {
		return false
	}
	return c.Send(event, data) == nil
}
