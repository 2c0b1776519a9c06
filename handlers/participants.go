// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/middleware"
	"github.com/danielhkuo/squid-demos/models"
)

type ParticipantHandler struct {
	store *game.Store
}

func NewParticipantHandler(store *game.Store) *ParticipantHandler {
	return &ParticipantHandler{store: store}
}

// CreateParticipant handles POST /participants
func (h *ParticipantHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.store.AddParticipant(r.Context(), req)
	if err != nil {
		writeGameError(w, err, "add participant")
		return
	}

	slog.Info("participant added", "session_id", p.SessionID, "participant_id", p.ID, "player_number", p.PlayerNumber)
	middleware.JSONResponse(w, http.StatusCreated, p)
}

// UpdateParticipant handles PUT /participants/{id}
func (h *ParticipantHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.store.UpdateParticipant(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeGameError(w, err, "update participant")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}

// DeleteParticipant handles DELETE /participants/{id}
func (h *ParticipantHandler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteParticipant(r.Context(), id); err != nil {
		writeGameError(w, err, "delete participant")
		return
	}

	slog.Info("participant deleted", "participant_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
