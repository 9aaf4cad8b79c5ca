package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// How often to re-read dashboards for connected users
	dashboardPollInterval = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins here - CORS middleware handles this
		return true
	},
}

// WebSocketMessage represents a message sent to clients
type WebSocketMessage struct {
	Type    string      `json:"type"` // "dashboard", "error", "ping"
	User    string      `json:"user"`
	Payload interface{} `json:"payload"`
}

// Client represents a WebSocket client connection subscribed to one user's
// dashboard.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user string
}

// Hub maintains the set of active clients and pushes dashboard updates to
// them. Updates are pushed only when the dashboard actually changed for the
// user the client is watching.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Dashboard source
	svc *querycache.Service

	// Per-user digest of the last broadcast dashboard
	lastDigest map[string][32]byte

	// Stop channel for the poll loop
	stop chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(svc *querycache.Service) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		svc:        svc,
		lastDigest: make(map[string][32]byte),
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and dashboard polling
func (h *Hub) Run(ctx context.Context) {
	go h.pollDashboards(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-h.stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketConnections.Inc()
			logger.Info("WebSocket client connected", "user", client.user, "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebSocketConnections.Dec()
				logger.Info("WebSocket client disconnected", "user", client.user, "total_clients", len(h.clients))
			}
			h.mu.Unlock()
		}
	}
}

// pollDashboards re-reads the dashboard of every watched user on a fixed
// interval and broadcasts the ones that changed since the last push.
func (h *Hub) pollDashboards(ctx context.Context) {
	ticker := time.NewTicker(dashboardPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case <-ticker.C:
			h.broadcastChanged()
		}
	}
}

// broadcastChanged pushes one dashboard message per user whose dashboard
// digest changed. Users with no connected client are skipped entirely.
func (h *Hub) broadcastChanged() {
	h.mu.RLock()
	watchers := make(map[string][]*Client)
	for client := range h.clients {
		watchers[client.user] = append(watchers[client.user], client)
	}
	h.mu.RUnlock()

	if len(watchers) == 0 {
		return
	}

	sent := 0
	for user, clients := range watchers {
		dash := h.svc.Dashboard(user)

		data, err := json.Marshal(WebSocketMessage{
			Type:    "dashboard",
			User:    user,
			Payload: dash,
		})
		if err != nil {
			logger.Error("Failed to marshal dashboard message", "error", err, "user", user)
			continue
		}

		digest := sha256.Sum256(data)
		h.mu.Lock()
		if h.lastDigest[user] == digest {
			h.mu.Unlock()
			continue
		}
		h.lastDigest[user] = digest
		h.mu.Unlock()

		for _, client := range clients {
			select {
			case client.send <- data:
				sent++
			default:
				// Client buffer full
				logger.Warn("Client send buffer full, skipping update", "user", user)
			}
		}
	}

	if sent > 0 {
		metrics.WebSocketMessagesSent.Add(float64(sent))
	}
}

// Stop terminates the hub loops. Used by tests.
func (h *Hub) Stop() {
	close(h.stop)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients only send pings and pongs; anything else is drained and
	// ignored until the connection closes.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket unexpected close", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// WebSocketHandler handles WebSocket connections for live dashboard updates
type WebSocketHandler struct {
	hub *Hub
	svc *querycache.Service
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *querycache.Service) *WebSocketHandler {
	hub := NewHub(svc)
	// Start the hub in the background with a long-lived context
	go hub.Run(context.Background())

	return &WebSocketHandler{
		hub: hub,
		svc: svc,
	}
}

// HandleWebSocket handles WebSocket upgrade and client connection
// GET /api/ws?user=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := userParam(r)
	if err := sanitizer.ValidateUserID(user); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("user", err.Error()))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade to WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
		user: user,
	}

	h.hub.register <- client

	// Send the current dashboard immediately so the client does not wait
	// out the first poll interval.
	initial := WebSocketMessage{
		Type:    "dashboard",
		User:    user,
		Payload: h.svc.Dashboard(user),
	}
	if data, err := json.Marshal(initial); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}

	// Start goroutines for this client
	go client.writePump()
	go client.readPump()
}

// GetHub returns the WebSocket hub for external broadcasting
func (h *WebSocketHandler) GetHub() *Hub {
	return h.hub
}
