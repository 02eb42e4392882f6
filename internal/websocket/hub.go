package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/metrics"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	TenantID() string
	Send(data []byte) error
	Close() error
}

// Hub tracks WebSocket connections organized by tenant
// It is safe for concurrent use
type Hub struct {
	// tenants maps tenant ID to a map of client ID to client
	tenants map[string]map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		tenants: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its tenant
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tenantID := client.TenantID()
	clientID := client.ID()

	if h.tenants[tenantID] == nil {
		h.tenants[tenantID] = make(map[string]ClientInterface)
	}
	if _, exists := h.tenants[tenantID][clientID]; !exists {
		metrics.ClientConnected()
	}
	h.tenants[tenantID][clientID] = client

	log.Debug().
		Str("tenant_id", tenantID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tenantID := client.TenantID()
	clientID := client.ID()

	clients, ok := h.tenants[tenantID]
	if !ok {
		return
	}
	if _, exists := clients[clientID]; !exists {
		return
	}
	delete(clients, clientID)
	metrics.ClientDisconnected()

	if len(clients) == 0 {
		delete(h.tenants, tenantID)
	}

	log.Debug().
		Str("tenant_id", tenantID).
		Str("client_id", clientID).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to all clients of a tenant
func (h *Hub) Broadcast(tenantID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("tenant_id", tenantID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	clients := h.snapshot(tenantID)
	if len(clients) == 0 {
		return
	}

	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("tenant_id", tenantID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("tenant_id", tenantID).
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// snapshot copies a tenant's clients so sends happen without holding the lock
func (h *Hub) snapshot(tenantID string) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.tenants[tenantID]
	out := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		out = append(out, client)
	}
	return out
}

// CloseAll closes every connected client. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []ClientInterface
	for _, clients := range h.tenants {
		for _, client := range clients {
			all = append(all, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range all {
		_ = client.Close()
	}
}

// ClientCount returns the number of clients connected for a tenant
func (h *Hub) ClientCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.tenants[tenantID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all tenants
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.tenants {
		total += len(clients)
	}
	return total
}
