// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). The wrapped writer still supports websocket hijacking.

# Host Routes

	mux.HandleFunc("POST /seasons", middleware.WithLogging(
		middleware.RequireAdmin(cfg.AdminToken, handler)))

RequireAdmin compares the admin_token cookie with the configured secret
and answers 401 otherwise.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
	}

An empty or "*" origin reflects the caller's Origin without allowing
credentials. Set a fixed origin for a host console on another domain.
Allowed headers are Content-Type, Authorization and X-Device-ID.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used in request and login logs.
*/
package middleware
