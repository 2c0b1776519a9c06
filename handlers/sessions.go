// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/squid-demos/cliparse"
	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/live"
	"github.com/danielhkuo/squid-demos/middleware"
	"github.com/danielhkuo/squid-demos/models"
)

type SessionHandler struct {
	store *game.Store
	hub   *live.Hub
	cfg   cliparse.Config
}

func NewSessionHandler(store *game.Store, hub *live.Hub, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{store: store, hub: hub, cfg: cfg}
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		writeGameError(w, err, "list sessions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sessions)
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	detail, err := h.store.GetSessionDetail(r.Context(), sessionID)
	if err != nil {
		writeGameError(w, err, "load session")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.store.CreateSession(r.Context(), req, h.cfg.DefaultPotContribution)
	if err != nil {
		writeGameError(w, err, "create session")
		return
	}

	slog.Info("session created", "session_id", session.ID, "slug", session.Slug, "week", session.WeekNumber)
	middleware.JSONResponse(w, http.StatusCreated, session)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.store.DeleteSession(r.Context(), sessionID); err != nil {
		writeGameError(w, err, "delete session")
		return
	}

	slog.Info("session deleted", "session_id", sessionID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// UpdateStatus handles PATCH /sessions/{id}/status
func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !game.ValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}

	session, err := h.store.TransitionSession(r.Context(), sessionID, req.Status)
	if err != nil {
		writeGameError(w, err, "update session status")
		return
	}

	slog.Info("session status changed", "session_id", sessionID, "status", session.Status)
	h.hub.Broadcast(sessionID, live.Message{Type: live.EventSessionStatus, Data: session})

	middleware.JSONResponse(w, http.StatusOK, session)
}

// Leaderboard handles GET /leaderboard
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.store.Leaderboard(r.Context())
	if err != nil {
		writeGameError(w, err, "load leaderboard")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, board)
}
