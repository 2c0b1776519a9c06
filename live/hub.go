// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to session watchers
const (
	EventSessionStatus = "session_status"
	EventVoteCast      = "vote_cast"
)

const writeWait = 5 * time.Second

// Message is the envelope every live event is sent in
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// VoteCastData announces that votes arrived without revealing tallies
type VoteCastData struct {
	SessionID  string `json:"session_id"`
	TotalVotes int    `json:"total_votes"`
}

// sendBuffer is how many messages may queue for one watcher before it is
// treated as stalled and dropped.
const sendBuffer = 32

// watcher owns the only goroutine allowed to write to its connection
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

func (w *watcher) writePump(sessionID string) {
	for data := range w.send {
		w.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("dropping live watcher", "session_id", sessionID, "error", err)
			// Closing ends the read loop in Serve, which unregisters us
			w.conn.Close()
			for range w.send {
			}
			return
		}
	}
}

// Hub tracks websocket watchers per session
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*websocket.Conn]*watcher
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*websocket.Conn]*watcher),
	}
}

// Upgrader accepts any origin; CORS is enforced on the REST surface and
// the live feed carries nothing a spectator could not already GET.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Hub) AddConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*websocket.Conn]*watcher)
	}
	w := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}
	h.sessions[sessionID][conn] = w
	go w.writePump(sessionID)
	slog.Info("live watcher connected", "session_id", sessionID, "watchers", len(h.sessions[sessionID]))
}

func (h *Hub) RemoveConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.remove(sessionID, conn) {
		slog.Info("live watcher disconnected", "session_id", sessionID)
	}
}

// remove must be called with h.mu held. The send channel is closed exactly
// once, by whoever takes the watcher out of the map.
func (h *Hub) remove(sessionID string, conn *websocket.Conn) bool {
	conns, ok := h.sessions[sessionID]
	if !ok {
		return false
	}
	w, ok := conns[conn]
	if !ok {
		return false
	}
	delete(conns, conn)
	close(w.send)
	conn.Close()
	if len(conns) == 0 {
		delete(h.sessions, sessionID)
	}
	return true
}

// Watchers returns how many connections follow a session
func (h *Hub) Watchers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Broadcast queues msg for every watcher of a session and returns without
// waiting on the network. A watcher whose queue is full is dropped.
func (h *Hub) Broadcast(sessionID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal live message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, w := range h.sessions[sessionID] {
		select {
		case w.send <- data:
		default:
			slog.Warn("dropping stalled live watcher", "session_id", sessionID)
			h.remove(sessionID, conn)
		}
	}
}

// Serve registers conn and blocks until the client goes away. Incoming
// frames are discarded; the read loop only exists to notice the close.
func (h *Hub) Serve(sessionID string, conn *websocket.Conn) {
	h.AddConnection(sessionID, conn)
	defer h.RemoveConnection(sessionID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
