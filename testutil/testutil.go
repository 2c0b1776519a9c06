// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/squid-demos/auth"
	"github.com/danielhkuo/squid-demos/cliparse"
	"github.com/danielhkuo/squid-demos/db"
	"github.com/danielhkuo/squid-demos/models"
)

// TestAdminToken is the host secret used by GetTestConfig
const TestAdminToken = "test-admin-token"

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temp directory. It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "squid-test.db")
	conn, err := db.Open(cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   3318,
		DatabaseURL:            "file::memory:",
		DatabaseType:           cliparse.DatabaseSQLite,
		AdminToken:             TestAdminToken,
		AllowedOrigin:          "*",
		DefaultPotContribution: cliparse.DefaultPotContribution,
	}
}

// AdminCookie returns the cookie an authenticated host sends
func AdminCookie(cfg cliparse.Config) *http.Cookie {
	return &http.Cookie{Name: auth.AdminCookie, Value: cfg.AdminToken}
}

// CreateTestSeason inserts a season and returns its ID.
// status should be "active", "finale" or "closed".
func CreateTestSeason(t *testing.T, conn *sql.DB, name, status string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO seasons (id, name, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, name, status, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test season: %v", err)
	}

	return id
}

// CreateTestSession inserts a weekly session and returns its ID. An empty
// seasonID leaves the session outside any season.
func CreateTestSession(t *testing.T, conn *sql.DB, seasonID string, week int, status string) string {
	t.Helper()

	id := uuid.NewString()
	var season sql.NullString
	if seasonID != "" {
		season = sql.NullString{String: seasonID, Valid: true}
	}

	_, err := conn.Exec(`
		INSERT INTO sessions (id, slug, title, week_number, session_date, status, season_id, is_finale, pot_contribution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, "episode-"+id[:8], "Test Episode", week, "2026-01-01", status, season, false,
		cliparse.DefaultPotContribution, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return id
}

// AddTestParticipant adds a participant to a session and returns its ID
func AddTestParticipant(t *testing.T, conn *sql.DB, sessionID, name string, playerNumber int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO participants (id, session_id, name, topic, image_url, player_number, status, vote_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, sessionID, name, name+"'s demo", "", playerNumber, models.ParticipantAlive, 0, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id
}

// CastTestVote inserts a vote row directly, bypassing the device quota
func CastTestVote(t *testing.T, conn *sql.DB, sessionID, participantID, deviceID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO votes (id, session_id, participant_id, device_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), sessionID, participantID, deviceID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// CountRows runs a COUNT(*) query and returns the result
func CountRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
