package httpapi

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"exoplanet-lab/internal/analysis"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 32
)

// ProgressHub fans analysis progress events out to connected WebSocket
// clients. Slow clients are dropped rather than allowed to stall the
// pipeline.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan analysis.ProgressEvent
}

// NewProgressHub creates an empty hub.
func NewProgressHub(logger *log.Logger) *ProgressHub {
	if logger == nil {
		logger = log.Default()
	}
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Progress events carry no secrets and the endpoint is
			// read-only, so cross-origin dashboards are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan analysis.ProgressEvent),
	}
}

// Publish sends an event to every connected client. Safe for concurrent use;
// satisfies analysis.ProgressFunc.
func (h *ProgressHub) Publish(ev analysis.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Client cannot keep up; disconnect it.
			delete(h.clients, conn)
			close(ch)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *ProgressHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams progress events until the
// client disconnects.
func (h *ProgressHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan analysis.ProgressEvent, clientSendSize)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	go h.writeLoop(conn, ch)
	h.readLoop(conn)
}

// writeLoop drains the client's channel onto the wire.
func (h *ProgressHub) writeLoop(conn *websocket.Conn, ch chan analysis.ProgressEvent) {
	defer conn.Close()
	for ev := range ch {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.remove(conn)
			return
		}
	}
}

// readLoop consumes (and discards) client frames so pings and close frames
// are processed; returning unregisters the client.
func (h *ProgressHub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	conn.Close()
}
