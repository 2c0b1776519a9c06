// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Squid Demos API.

	mux := router.NewRouter(db, cfg)

# Endpoints

Public:

	GET  /health
	GET  /seasons
	GET  /seasons/current
	GET  /sessions
	GET  /sessions/{id}
	GET  /sessions/{id}/live     - websocket feed
	GET  /sessions/{id}/my-votes - votes of the calling device
	GET  /leaderboard
	POST /votes
	POST /auth/login
	POST /auth/logout

Host only (admin_token cookie):

	POST   /seasons
	DELETE /seasons/{id}
	PATCH  /seasons/{id}/close
	POST   /sessions
	DELETE /sessions/{id}
	PATCH  /sessions/{id}/status
	POST   /participants
	PUT    /participants/{id}
	DELETE /participants/{id}

CORS is applied by the caller around the returned mux.
*/
package router
