// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The same DDL runs on PostgreSQL and SQLite, so it sticks to the
// common subset of both dialects.
const schema = `
-- Seasons
CREATE TABLE IF NOT EXISTS seasons (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'finale', 'closed')),
    winner_name TEXT,
    total_prize_pot DOUBLE PRECISION,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_seasons_status ON seasons(status);

-- Sessions (one per week, plus at most one finale per season)
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    week_number INTEGER NOT NULL,
    session_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'lobby' CHECK (status IN ('lobby', 'voting', 'results', 'completed')),
    season_id TEXT REFERENCES seasons(id) ON DELETE SET NULL,
    is_finale BOOLEAN NOT NULL DEFAULT FALSE,
    pot_contribution DOUBLE PRECISION NOT NULL DEFAULT 25,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_season_id ON sessions(season_id);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);

-- Participants
CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    player_number INTEGER NOT NULL CHECK (player_number >= 1),
    status TEXT NOT NULL DEFAULT 'alive' CHECK (status IN ('alive', 'eliminated')),
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    demo_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, player_number)
);

CREATE INDEX IF NOT EXISTS idx_participants_session_id ON participants(session_id);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    device_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, participant_id, device_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_session_id ON votes(session_id);
CREATE INDEX IF NOT EXISTS idx_votes_device ON votes(session_id, device_id);

-- Per-device vote ledger, bumped in the same transaction as the vote insert
CREATE TABLE IF NOT EXISTS device_quota (
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    device_id TEXT NOT NULL,
    used INTEGER NOT NULL DEFAULT 0 CHECK (used >= 0 AND used <= 2),
    PRIMARY KEY (session_id, device_id)
);
`
