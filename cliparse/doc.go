// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p             Server port
	-d             Database URL or SQLite path
	-t             Database type (sqlite or postgres)
	-origin        Allowed CORS origin
	-default-pot   Pot contribution for new weekly sessions
	-admin-token   Host console secret

# Environment Variables

Flags fall back to environment variables, which may come from a .env file:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ALLOWED_ORIGIN → -origin
	DEFAULT_POT    → -default-pot
	ADMIN_TOKEN    → -admin-token

CLI flags take precedence over environment variables.

# Validation

DATABASE_URL and ADMIN_TOKEN must be provided. DATABASE_TYPE must be
sqlite or postgres.
*/
package cliparse
