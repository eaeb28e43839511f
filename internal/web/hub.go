package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Any origin; put a reverse proxy in front for CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Compile-time interface check.
var _ domain.TimerObserver = (*Hub)(nil)

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string    `json:"event"`
	Data  TimerView `json:"data"`
}

// Hub streams the timer to websocket clients: a "snapshot" message every
// interval while the timer is active, plus one message per timer event.
type Hub struct {
	source   func() domain.TimerSnapshot
	interval time.Duration
	log      *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool // set once Run has shut the hub down
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub that reads the timer from source.
func NewHub(source func() domain.TimerSnapshot, interval time.Duration, log *logger.Logger) *Hub {
	if interval <= 0 {
		interval = time.Second
	}
	return &Hub{
		source:   source,
		interval: interval,
		log:      log,
		clients:  make(map[*client]struct{}),
	}
}

// Run broadcasts snapshots until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			if h.Count() == 0 {
				continue
			}
			if snap := h.source(); snap.Active() {
				h.broadcast("snapshot", snap)
			}
		}
	}
}

// OnTimerEvent pushes the event to every client right away.
func (h *Hub) OnTimerEvent(ctx context.Context, ev domain.TimerEvent) {
	h.broadcast(string(ev.Type), ev.Timer)
}

// ServeHTTP upgrades the connection and serves the client until it
// disconnects. The current timer is sent on connect.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	// The first snapshot is queued before the client is visible to
	// broadcast or closeAll, which own c.send from then on.
	c := &client{conn: conn, send: make(chan []byte, sendBufSize)}
	if data, err := encode("snapshot", h.source()); err == nil {
		c.send <- data
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	defer h.unregister(c)

	go c.writePump()
	c.readPump()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register adds c, or reports false when the hub is already shut down.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("websocket client connected (%d total)", h.Count())
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(event string, snap domain.TimerSnapshot) {
	data, err := encode(event, snap)
	if err != nil {
		h.log.Error("encode %s: %v", event, err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Buffer full: drop the client.
	for _, c := range slow {
		h.log.Warn("dropping slow websocket client")
		h.unregister(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func encode(event string, snap domain.TimerSnapshot) ([]byte, error) {
	return json.Marshal(Message{Event: event, Data: NewTimerView(snap)})
}

// writePump forwards queued messages and sends pings. One goroutine per
// client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles control frames and detects disconnects. Blocks until
// the connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
