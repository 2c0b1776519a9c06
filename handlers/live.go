// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/live"
)

type LiveHandler struct {
	store *game.Store
	hub   *live.Hub
}

func NewLiveHandler(store *game.Store, hub *live.Hub) *LiveHandler {
	return &LiveHandler{store: store, hub: hub}
}

// Watch handles GET /sessions/{id}/live
func (h *LiveHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := h.store.GetSession(r.Context(), sessionID); err != nil {
		writeGameError(w, err, "load session")
		return
	}

	conn, err := live.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	h.hub.Serve(sessionID, conn)
}
