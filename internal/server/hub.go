package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans stage leaderboard updates out to websocket subscribers. Each
// connection subscribes to exactly one stage.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]map[*websocket.Conn]struct{}
	log     *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		clients: make(map[int]map[*websocket.Conn]struct{}),
		log:     log,
	}
}

// Subscribe upgrades the request and registers the connection for a
// stage's updates. The connection is read-drained until the client goes
// away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, stageID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	if h.clients[stageID] == nil {
		h.clients[stageID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[stageID][conn] = struct{}{}
	h.mu.Unlock()

	h.log.WithField("stage_id", stageID).Debug("Leaderboard subscriber connected")

	go func() {
		defer h.drop(stageID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the payload to every subscriber of the stage. Dead
// connections are dropped on write failure.
func (h *Hub) Broadcast(stageID int, payload interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[stageID]))
	for conn := range h.clients[stageID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.drop(stageID, conn)
		}
	}
	if len(conns) > 0 {
		metrics.LeaderboardBroadcastsTotal.Inc()
	}
}

func (h *Hub) drop(stageID int, conn *websocket.Conn) {
	h.mu.Lock()
	if subs, ok := h.clients[stageID]; ok {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.clients, stageID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// Close closes every subscriber connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.clients {
		for conn := range subs {
			conn.Close()
		}
	}
	h.clients = make(map[int]map[*websocket.Conn]struct{})
}
