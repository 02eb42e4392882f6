package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/metrics"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 64
)

// Client represents a single WebSocket connection watching one view
type Client struct {
	id        string
	tenantID  string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client. Its context lives until Close.
func NewClient(conn *websocket.Conn, tenantID string, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:       uuid.New().String(),
		tenantID: tenantID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// TenantID returns the client's tenant
func (c *Client) TenantID() string {
	return c.tenantID
}

// Context is cancelled once the client is closed. Store subscriptions
// feeding the client's view should be bound to it.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the client connection
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Forward writes every payload received on updates as a view snapshot event.
// It returns when updates is closed or the client falls too far behind.
func (c *Client) Forward(view EntityType, updates <-chan interface{}) {
	for payload := range updates {
		data, err := Snapshot(view, payload).ToJSON()
		if err != nil {
			log.Error().Err(err).Str("client_id", c.id).Str("view", string(view)).Msg("Failed to serialize view")
			continue
		}
		if err := c.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("client_id", c.id).
				Str("tenant_id", c.tenantID).
				Msg("Dropping slow WebSocket client")
			c.Close()
			return
		}
		metrics.RecordViewPush(string(view))
	}
}

// ReadPump pumps messages from the WebSocket connection
// This should be run in a goroutine
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("tenant_id", c.tenantID).
					Msg("WebSocket unexpected close")
			}
			break
		}
		// Views are read-only; inbound messages are ignored
	}
}

// WritePump pumps queued messages to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("tenant_id", c.tenantID).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
