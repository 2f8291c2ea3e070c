package realtime

import (
	"context"
	"sync"
)

// watchKey identifies one watch; ID "" watches the whole collection
type watchKey struct {
	Collection string
	ID         string
}

// Client is one websocket connection
type Client struct {
	UserID  string
	IsAdmin bool

	send    chan Change
	mu      sync.RWMutex
	watches map[watchKey]struct{}
}

func NewClient(userID string, isAdmin bool) *Client {
	return &Client{
		UserID:  userID,
		IsAdmin: isAdmin,
		send:    make(chan Change, 64),
		watches: make(map[watchKey]struct{}),
	}
}

// Send exposes the outbound queue to the write pump
func (c *Client) Send() <-chan Change {
	return c.send
}

func (c *Client) Watch(collection, id string) {
	c.mu.Lock()
	c.watches[watchKey{collection, id}] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) Unwatch(collection, id string) {
	c.mu.Lock()
	delete(c.watches, watchKey{collection, id})
	c.mu.Unlock()
}

func (c *Client) wants(change Change) bool {
	if !c.IsAdmin && change.OwnerID != c.UserID {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.watches[watchKey{change.Collection, ""}]; ok {
		return true
	}
	_, ok := c.watches[watchKey{change.Collection, change.ID}]
	return ok
}

// Hub maintains the set of active clients and fans out changes to watchers
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Register(client *Client)   { h.register <- client }
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// Broadcast delivers change to every interested client. A client whose queue
// is full misses the change; it re-reads on reconnect.
func (h *Hub) Broadcast(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.wants(change) {
			continue
		}
		select {
		case client.send <- change:
		default:
		}
	}
}

// Publish lets the hub act as an in-process Publisher when Redis is not configured
func (h *Hub) Publish(_ context.Context, change Change) error {
	h.Broadcast(change)
	return nil
}

// ClientCount is used by health output
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
