// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Squid Demos API server.

Squid Demos runs a weekly elimination game for live demo nights. The
audience votes from their phones, the two weakest demos of each week are
eliminated, and the survivors of a season meet again in a finale.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=squid.db ADMIN_TOKEN=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --admin-token ...

A .env file in the working directory is read if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_TOKEN (--admin-token): shared secret for the host console

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - ALLOWED_ORIGIN (--origin): CORS origin; required for cross-origin admin cookies
  - DEFAULT_POT (--default-pot): pot contribution of new weekly sessions (default: 25)

# Architecture

  - game: session lifecycle, vote recording, season rollover
  - handlers: HTTP request handlers over the game store
  - router: Route definitions using Go 1.22+ routing
  - live: websocket push of session changes
  - middleware: CORS, logging, admin cookie, JSON helpers
  - models: Request/response and domain types
  - auth: Admin token checks, device ids, slug suffixes
  - db: Connections, schema creation, constraint errors
  - cliparse: Configuration parsing
*/
package main
