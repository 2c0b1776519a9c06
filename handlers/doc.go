// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Squid Demos API.

# Handler Types

Each handler is a thin struct over the game store:

  - SessionHandler: session CRUD, status transitions, leaderboard
  - SeasonHandler: season CRUD and closing a season into its finale
  - ParticipantHandler: participant CRUD
  - VoteHandler: vote casting and per-device vote lookup
  - AuthHandler: host login and logout
  - LiveHandler: websocket feed for a session

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(store, hub, cfg)

# Session Lifecycle

Sessions move one step at a time: lobby → voting → results → completed

	PATCH /sessions/{id}/status → UpdateStatus

Entering results tallies the votes and eliminates the two players with the
fewest. Completing a finale closes its season and records the winner.

# Voting

	POST /votes                   → CastVotes
	GET  /sessions/{id}/my-votes  → MyVotes

The device id comes from the body or the X-Device-ID header and must be a
UUID. A device gets two votes per session.

# Errors

Store errors are mapped in one place (writeGameError): validation 400,
voting closed 403, not found 404, quota and duplicate votes 409, season
already finalized 400, anything else 500.
*/
package handlers
