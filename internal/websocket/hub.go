package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer unless configured otherwise
	defaultMaxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// MetricsRecorder is told the number of connected clients whenever it changes
type MetricsRecorder interface {
	SetClientCount(count int)
}

// HubConfig contains configuration for the WebSocket hub
type HubConfig struct {
	MaxMessageSize int64
	CheckOrigin    func(r *http.Request) bool // nil accepts every origin
}

// Hub maintains the set of active clients and answers their calculation requests
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	calculator *payoff.Calculator
	upgrader   websocket.Upgrader
	config     HubConfig
	metrics    MetricsRecorder
	log        *logger.Logger

	mu    sync.RWMutex
	count int
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// NewHub creates a new WebSocket hub. metrics may be nil.
func NewHub(calculator *payoff.Calculator, config HubConfig, metrics MetricsRecorder) *Hub {
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaultMaxMessageSize
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = func(r *http.Request) bool { return true }
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		calculator: calculator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		config:  config,
		metrics: metrics,
		log:     logger.GetLogger("websocket.hub"),
	}
}

// Run starts the WebSocket hub. When ctx is cancelled every client is sent a
// close frame and the hub stops accepting connections.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Starting WebSocket hub")

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.log.Infof("WebSocket hub shutting down with %d clients", len(h.clients))
			h.clients = make(map[*Client]bool)
			h.setCount(0)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			h.log.Debugf("Client %s registered", client.id)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// readPump has returned, so nothing sends on this channel any more
				close(client.send)
				h.setCount(len(h.clients))
				h.log.Debugf("Client %s unregistered", client.id)
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(count int) {
	h.mu.Lock()
	h.count = count
	h.mu.Unlock()
	h.metrics.SetClientCount(count)
}

// HandleWebSocket handles WebSocket upgrade and client management
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   uuid.NewString(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Errorf("WebSocket error on client %s: %v", c.id, err)
			}
			return
		}

		if !c.handleMessage(data) {
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
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

			// one frame per message so every frame is a complete JSON document
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.hub.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

type noopRecorder struct{}

func (noopRecorder) SetClientCount(int) {}
