// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/middleware"
)

// writeGameError maps an error from the game store onto an HTTP status.
// Anything unclassified is a datastore failure and is logged.
func writeGameError(w http.ResponseWriter, err error, action string) {
	var quotaErr *game.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		middleware.ErrorResponse(w, http.StatusConflict, quotaErr.Error())
	case errors.Is(err, game.ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrVotingClosed):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrSeasonNotActive), errors.Is(err, game.ErrAlreadyFinalized):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrStateConflict):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
