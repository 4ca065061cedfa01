package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/headtrack/internal/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeTimeout = time.Second

// PoseHandler serves the latest tracking status as JSON.
type PoseHandler struct {
	tracker Tracker
}

// NewPoseHandler creates a PoseHandler.
func NewPoseHandler(t Tracker) *PoseHandler {
	return &PoseHandler{tracker: t}
}

func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.tracker.Status())
}

// PoseStream broadcasts every new tracking status to websocket clients.
type PoseStream struct {
	tracker  Tracker
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
}

// NewPoseStream creates a PoseStream and starts broadcasting until ctx is
// done.
func NewPoseStream(ctx context.Context, t Tracker, interval time.Duration) *PoseStream {
	h := &PoseStream{
		tracker:  t,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast(ctx)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PoseStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *PoseStream) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast sends each status with a new sequence number to all clients.
func (h *PoseStream) broadcast(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		status := h.tracker.Status()
		if status.Seq == lastSeq {
			continue
		}
		lastSeq = status.Seq

		msg, err := json.Marshal(status)
		if err != nil {
			log.Error("encode pose", "error", err)
			continue
		}

		h.mu.Lock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", "error", err)
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

func (h *PoseStream) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
