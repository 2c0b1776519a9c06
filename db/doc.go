// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connections

Open accepts either driver:

	conn, err := db.Open(cliparse.DatabaseSQLite, "squid.db")
	conn, err := db.Open(cliparse.DatabasePostgres, "postgres://...")

SQLite connections turn on foreign keys and a busy timeout and are limited
to a single open connection.

# Schema Creation

CreateSchema is safe to call multiple times. The DDL is shared by both
dialects.

# Tables

  - seasons: active → finale → closed, winner and prize pot once closed
  - sessions: one per week, plus the finale (week 99, is_finale)
  - participants: per-session players, unique player_number per session
  - votes: one row per device per participant
  - device_quota: votes used per device per session, capped at 2

# Relationships

	season 1──* session          (ON DELETE SET NULL)
	session 1──* participant     (ON DELETE CASCADE)
	session 1──* vote            (ON DELETE CASCADE)
	participant 1──* vote        (ON DELETE CASCADE)
	session 1──* device_quota    (ON DELETE CASCADE)

# Errors

IsUniqueViolation recognises unique and primary key failures from both
lib/pq and modernc sqlite.
*/
package db
