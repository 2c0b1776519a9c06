// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/squid-demos/cliparse"
	"github.com/danielhkuo/squid-demos/game"
	"github.com/danielhkuo/squid-demos/handlers"
	"github.com/danielhkuo/squid-demos/live"
	"github.com/danielhkuo/squid-demos/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	store := game.New(db)
	hub := live.NewHub()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg)
	seasonHandler := handlers.NewSeasonHandler(store)
	sessionHandler := handlers.NewSessionHandler(store, hub, cfg)
	participantHandler := handlers.NewParticipantHandler(store)
	voteHandler := handlers.NewVoteHandler(store, hub)
	liveHandler := handlers.NewLiveHandler(store, hub)

	public := middleware.WithLogging
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminToken, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Host login
	mux.HandleFunc("POST /auth/login", public(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", public(authHandler.Logout))

	// Seasons
	mux.HandleFunc("GET /seasons", public(seasonHandler.ListSeasons))
	mux.HandleFunc("GET /seasons/current", public(seasonHandler.CurrentSeason))
	mux.HandleFunc("POST /seasons", admin(seasonHandler.CreateSeason))
	mux.HandleFunc("DELETE /seasons/{id}", admin(seasonHandler.DeleteSeason))
	mux.HandleFunc("PATCH /seasons/{id}/close", admin(seasonHandler.CloseSeason))

	// Sessions
	mux.HandleFunc("GET /sessions", public(sessionHandler.ListSessions))
	mux.HandleFunc("GET /sessions/{id}", public(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions", admin(sessionHandler.CreateSession))
	mux.HandleFunc("DELETE /sessions/{id}", admin(sessionHandler.DeleteSession))
	mux.HandleFunc("PATCH /sessions/{id}/status", admin(sessionHandler.UpdateStatus))
	mux.HandleFunc("GET /sessions/{id}/live", public(liveHandler.Watch))
	mux.HandleFunc("GET /leaderboard", public(sessionHandler.Leaderboard))

	// Participants
	mux.HandleFunc("POST /participants", admin(participantHandler.CreateParticipant))
	mux.HandleFunc("PUT /participants/{id}", admin(participantHandler.UpdateParticipant))
	mux.HandleFunc("DELETE /participants/{id}", admin(participantHandler.DeleteParticipant))

	// Voting (public, device scoped)
	mux.HandleFunc("POST /votes", public(voteHandler.CastVotes))
	mux.HandleFunc("GET /sessions/{id}/my-votes", public(voteHandler.MyVotes))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("squid-demos API v1"))
	})

	return mux
}
