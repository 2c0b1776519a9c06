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

type SeasonHandler struct {
	store *game.Store
}

func NewSeasonHandler(store *game.Store) *SeasonHandler {
	return &SeasonHandler{store: store}
}

// ListSeasons handles GET /seasons
func (h *SeasonHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.store.ListSeasons(r.Context())
	if err != nil {
		writeGameError(w, err, "list seasons")
		return
	}
	if seasons == nil {
		seasons = []models.SeasonWithSessions{}
	}
	middleware.JSONResponse(w, http.StatusOK, seasons)
}

// CurrentSeason handles GET /seasons/current
func (h *SeasonHandler) CurrentSeason(w http.ResponseWriter, r *http.Request) {
	season, err := h.store.CurrentSeason(r.Context())
	if err != nil {
		writeGameError(w, err, "load current season")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, season)
}

// CreateSeason handles POST /seasons
func (h *SeasonHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSeasonRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	season, err := h.store.CreateSeason(r.Context(), req.Name)
	if err != nil {
		writeGameError(w, err, "create season")
		return
	}

	slog.Info("season created", "season_id", season.ID, "name", season.Name)
	middleware.JSONResponse(w, http.StatusCreated, season)
}

// DeleteSeason handles DELETE /seasons/{id}
func (h *SeasonHandler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := r.PathValue("id")
	if err := h.store.DeleteSeason(r.Context(), seasonID); err != nil {
		writeGameError(w, err, "delete season")
		return
	}

	slog.Info("season deleted", "season_id", seasonID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// CloseSeason handles PATCH /seasons/{id}/close
func (h *SeasonHandler) CloseSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := r.PathValue("id")
	if seasonID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "season id is required")
		return
	}

	resp, err := h.store.CloseSeason(r.Context(), seasonID)
	if err != nil {
		writeGameError(w, err, "close season")
		return
	}

	slog.Info("season closed",
		"season_id", seasonID,
		"finale_session_id", resp.FinaleSession.ID,
		"finalists", resp.FinalistsCount,
	)
	middleware.JSONResponse(w, http.StatusOK, resp)
}
