// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package feed

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client describes one open feed connection.
type Client struct {
	ConnectedAt time.Time `json:"connected_at"`
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	Transport   string    `json:"transport"`
}

// Hub is the registry of open feed connections.
type Hub struct {
	clients  map[string]*Client
	onChange func(count int)
	mu       sync.RWMutex
}

// NewHub creates an empty hub. onChange, if set, is called with the new client
// count after every registration change while the hub lock is held.
func NewHub(onChange func(count int)) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		onChange: onChange,
	}
}

// Register adds a connection and returns its registry entry.
func (h *Hub) Register(remoteAddr, transport string) *Client {
	c := &Client{
		ID:          uuid.NewString(),
		RemoteAddr:  remoteAddr,
		Transport:   transport,
		ConnectedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	h.notify()
	return c
}

// Unregister removes a connection. Removing an unknown client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	h.notify()
}

func (h *Hub) notify() {
	if h.onChange != nil {
		h.onChange(len(h.clients))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Clients returns a snapshot of the registry, oldest connection first.
func (h *Hub) Clients() []Client {
	h.mu.RLock()
	list := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		list = append(list, *c)
	}
	h.mu.RUnlock()

	slices.SortFunc(list, func(a, b Client) int {
		return a.ConnectedAt.Compare(b.ConnectedAt)
	})
	return list
}
