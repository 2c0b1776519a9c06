// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/squid-demos/auth"
	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/live"
	"github.com/danielhkuo/squid-demos/middleware"
	"github.com/danielhkuo/squid-demos/models"
)

// DeviceIDHeader carries the voter's device id when it is not in the body
const DeviceIDHeader = "X-Device-ID"

type VoteHandler struct {
	store *game.Store
	hub   *live.Hub
}

func NewVoteHandler(store *game.Store, hub *live.Hub) *VoteHandler {
	return &VoteHandler{store: store, hub: hub}
}

// CastVotes handles POST /votes
func (h *VoteHandler) CastVotes(w http.ResponseWriter, r *http.Request) {
	var req models.CastVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = r.Header.Get(DeviceIDHeader)
	}

	// Older clients send a single participant_id
	participantIDs := req.ParticipantIDs
	if len(participantIDs) == 0 && req.ParticipantID != "" {
		participantIDs = []string{req.ParticipantID}
	}

	if req.SessionID == "" || len(participantIDs) == 0 || deviceID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id, participant_ids and device_id are required")
		return
	}
	if err := auth.ValidateDeviceID(deviceID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "device_id must be a UUID")
		return
	}

	votes, err := h.store.CastVotes(r.Context(), req.SessionID, participantIDs, deviceID)
	if err != nil {
		writeGameError(w, err, "cast votes")
		return
	}

	slog.Info("votes cast", "session_id", req.SessionID, "count", len(votes))

	total, err := h.store.CountVotes(r.Context(), req.SessionID)
	if err != nil {
		slog.Warn("skipping vote broadcast", "session_id", req.SessionID, "error", err)
	} else {
		h.hub.Broadcast(req.SessionID, live.Message{
			Type: live.EventVoteCast,
			Data: live.VoteCastData{SessionID: req.SessionID, TotalVotes: total},
		})
	}

	middleware.JSONResponse(w, http.StatusCreated, votes)
}

// MyVotes handles GET /sessions/{id}/my-votes
func (h *VoteHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	deviceID := r.Header.Get(DeviceIDHeader)
	if deviceID == "" {
		deviceID = r.URL.Query().Get("device_id")
	}
	if err := auth.ValidateDeviceID(deviceID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-ID header must be a UUID")
		return
	}

	resp, err := h.store.DeviceVotes(r.Context(), sessionID, deviceID)
	if err != nil {
		writeGameError(w, err, "load votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
