package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onnwee/nbody-core/internal/apierr"
	"github.com/onnwee/nbody-core/internal/logger"
	"github.com/onnwee/nbody-core/internal/metrics"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from
	// the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer with this period. It must be
	// less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum message size accepted from a peer;
	// clients only ever send control messages, never snapshot data.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware on the REST surface already gates origins;
		// the WS upgrade path allows all and relies on that layer.
		return true
	},
}

// Client is a single WebSocket connection subscribed to the snapshot hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans the latest serialized snapshot out to every connected client.
// It holds no simulation state itself — Broadcast is called once per
// tick by whatever owns the Simulation.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub constructs an unstarted Hub; call Run to start its event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 8),
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = nil
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebSocketConnections.Inc()
			logger.WithComponent("websocket").Info("client connected", "total", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebSocketConnections.Dec()
			}
			h.mu.Unlock()
			logger.WithComponent("websocket").Info("client disconnected", "total", len(h.clients))

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop it rather than block every
					// other client on one backed-up connection.
					delete(h.clients, client)
					close(client.send)
					metrics.WebSocketConnections.Dec()
				}
			}
			n := len(h.clients)
			h.mu.RUnlock()
			if n > 0 {
				metrics.WebSocketMessagesSent.Add(float64(n))
			}
		}
	}
}

// Broadcast enqueues payload for delivery to every connected client. It
// never blocks: a full queue means the hub is falling behind, and the
// caller (the step driver) must not stall on it.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		logger.WithComponent("websocket").Warn("broadcast queue full, dropping snapshot")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WithComponent("websocket").Warn("unexpected close", "error", err)
			}
			return
		}
	}
}

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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// WebSocketHandler upgrades incoming HTTP connections and registers them
// with hub.
type WebSocketHandler struct {
	hub *Hub
}

// NewWebSocketHandler constructs a handler backed by hub. hub's Run loop
// must already be started by the caller.
func NewWebSocketHandler(hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and starts its read/write pumps.
// GET /ws/particles
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("websocket").Error("upgrade failed", "error", err)
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("failed to establish websocket connection"))
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 8),
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
