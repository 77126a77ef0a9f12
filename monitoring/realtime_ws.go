package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// snapshotInterval is how often connected clients receive a metrics frame.
const snapshotInterval = 2 * time.Second

// writeWait bounds a single frame write to a client.
const writeWait = 5 * time.Second

// client is one websocket subscriber. All writes to conn go through the
// send channel and are performed by a single writePump goroutine; the conn
// allows only one concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes periodic metric snapshots to websocket clients.
type Hub struct {
	collector *Collector
	logger    *zap.SugaredLogger
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
	done    chan struct{}
	once    sync.Once
}

// NewHub creates a hub over collector.
func NewHub(collector *Collector, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		collector: collector,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]bool),
		done:    make(chan struct{}),
	}
}

// Run broadcasts snapshots until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and registers the client for snapshots.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	// queue an immediate frame so the client does not wait a full
	// interval; done before publishing c so nothing else can touch send.
	// writePump is the only goroutine that ever writes to the conn.
	if frame, err := json.Marshal(h.collector.Snapshot()); err == nil {
		c.send <- frame
	}

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Infow("metrics client connected", "clients", total)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains c.send onto the connection. It is the sole writer for c.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.remove(c)
			return
		}
	}
}

// readPump discards inbound messages so disconnects are noticed.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) broadcast() {
	frame, err := json.Marshal(h.collector.Snapshot())
	if err != nil {
		h.logger.Warnw("failed to encode metrics snapshot", "error", err)
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			// slow client; drop it rather than block the hub
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	removed := h.clients[c]
	if removed {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		c.conn.Close()
		h.logger.Infow("metrics client disconnected", "clients", total)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}
