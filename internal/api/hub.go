package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	clientSendSize = 16
)

// Hub fans freshly computed analysis rows out to websocket subscribers.
// It implements analysis.Publisher.
// ⭐ SSOT: websocket distribution lives here only
type Hub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new websocket hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.WithField("module", "ws_hub"),
	}
}

// PublishRows broadcasts rows to every connected subscriber. A client that
// cannot keep up is dropped rather than blocking the run.
func (h *Hub) PublishRows(rows []contracts.AnalysisRow) {
	if len(rows) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type": "analysis_rows",
		"rows": rows,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal rows for broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			go h.remove(c)
		}
	}
}

// HandleWS upgrades the request and registers the subscriber.
// GET /ws/analysis
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("Websocket client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		close(c.send)
		c.conn.Close()
	}
}

// readPump discards inbound messages; the stream is one-way. It exists to
// process control frames and detect disconnects.
func (h *Hub) readPump(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(c)
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
