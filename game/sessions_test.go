// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/squid-demos/models"
	"github.com/danielhkuo/squid-demos/testutil"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)
	season := testutil.CreateTestSeason(t, conn, "Season 1", models.SeasonActive)

	tests := []struct {
		name    string
		req     models.CreateSessionRequest
		wantErr error
		check   func(t *testing.T, s *models.Session)
	}{
		{
			name:    "missing title",
			req:     models.CreateSessionRequest{WeekNumber: 1},
			wantErr: ErrValidation,
		},
		{
			name:    "week zero",
			req:     models.CreateSessionRequest{Title: "Ep", WeekNumber: 0},
			wantErr: ErrValidation,
		},
		{
			name:    "finale week reserved",
			req:     models.CreateSessionRequest{Title: "Ep", WeekNumber: models.FinaleWeekNumber},
			wantErr: ErrValidation,
		},
		{
			name:    "bad date",
			req:     models.CreateSessionRequest{Title: "Ep", WeekNumber: 1, SessionDate: "14/03/2026"},
			wantErr: ErrValidation,
		},
		{
			name:    "negative pot",
			req:     models.CreateSessionRequest{Title: "Ep", WeekNumber: 1, PotContribution: floatPtr(-5)},
			wantErr: ErrValidation,
		},
		{
			name:    "unknown season",
			req:     models.CreateSessionRequest{Title: "Ep", WeekNumber: 1, SeasonID: strPtr("missing")},
			wantErr: ErrValidation,
		},
		{
			name: "defaults",
			req:  models.CreateSessionRequest{Title: " Episode 3 ", WeekNumber: 3, SeasonID: &season},
			check: func(t *testing.T, s *models.Session) {
				if s.Slug != "episode-3" {
					t.Errorf("Expected slug episode-3, got %s", s.Slug)
				}
				if s.Title != "Episode 3" {
					t.Errorf("Expected trimmed title, got %q", s.Title)
				}
				if s.SessionDate != "2026-03-14" {
					t.Errorf("Expected today's date, got %s", s.SessionDate)
				}
				if s.PotContribution != 25 {
					t.Errorf("Expected default pot 25, got %v", s.PotContribution)
				}
				if s.Status != models.StatusLobby || s.IsFinale {
					t.Errorf("Expected weekly lobby session, got %s (finale=%v)", s.Status, s.IsFinale)
				}
			},
		},
		{
			name: "slug collision gets suffix",
			req:  models.CreateSessionRequest{Title: "Episode 3 redo", WeekNumber: 3},
			check: func(t *testing.T, s *models.Session) {
				if !strings.HasPrefix(s.Slug, "episode-3-") || len(s.Slug) != len("episode-3-")+4 {
					t.Errorf("Expected suffixed slug, got %s", s.Slug)
				}
				if s.SeasonID != nil {
					t.Errorf("Expected no season, got %v", *s.SeasonID)
				}
			},
		},
		{
			name: "custom slug and pot",
			req: models.CreateSessionRequest{
				Title: "Pilot", WeekNumber: 1, Slug: "The Pilot!", SessionDate: "2026-01-05",
				PotContribution: floatPtr(0),
			},
			check: func(t *testing.T, s *models.Session) {
				if s.Slug != "the-pilot" {
					t.Errorf("Expected slug the-pilot, got %s", s.Slug)
				}
				if s.PotContribution != 0 {
					t.Errorf("Expected explicit zero pot, got %v", s.PotContribution)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.CreateSession(ctx, tt.req, 25)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateSession() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() unexpected error: %v", err)
			}
			tt.check(t, s)

			stored, err := getSession(ctx, conn, s.ID)
			if err != nil {
				t.Fatalf("getSession() error: %v", err)
			}
			if stored.Slug != s.Slug {
				t.Errorf("Stored slug %s, returned %s", stored.Slug, s.Slug)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Season 2":          "season-2",
		"  Demo  Night!! ":  "demo-night",
		"---":               "",
		"Épisode Été":       "épisode-été",
		"week_7/final cut.": "week-7-final-cut",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPotTotals(t *testing.T) {
	sessions := []models.Session{
		{ID: "1", WeekNumber: 1, PotContribution: 25},
		{ID: "2", WeekNumber: 2, PotContribution: 25.5},
		{ID: "3", WeekNumber: 3, PotContribution: 25},
		{ID: "f", WeekNumber: models.FinaleWeekNumber, IsFinale: true, PotContribution: 10},
	}

	running, previous := PotTotals(sessions, sessions[2])
	if !running.Equal(decimal.RequireFromString("85.5")) {
		t.Errorf("running = %s, want 85.5", running)
	}
	if !previous.Equal(decimal.RequireFromString("50.5")) {
		t.Errorf("previous = %s, want 50.5", previous)
	}

	// The finale's previous total covers every weekly session
	_, previous = PotTotals(sessions, sessions[3])
	if !previous.Equal(decimal.RequireFromString("75.5")) {
		t.Errorf("finale previous = %s, want 75.5", previous)
	}
}

func TestFormatPot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"75", "$75.00"},
		{"1250.5", "$1,250.50"},
		{"1234567.891", "$1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatPot(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatPot(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetSessionDetail(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	season := testutil.CreateTestSeason(t, conn, "Season 1", models.SeasonActive)
	testutil.CreateTestSession(t, conn, season, 1, models.StatusCompleted)
	current := testutil.CreateTestSession(t, conn, season, 2, models.StatusVoting)
	testutil.AddTestParticipant(t, conn, current, "Ada", 1)

	detail, err := store.GetSessionDetail(ctx, current)
	if err != nil {
		t.Fatalf("GetSessionDetail() error: %v", err)
	}
	if detail.RunningPotTotal != 50 || detail.PreviousPotTotal != 25 {
		t.Errorf("Expected pots 50/25, got %v/%v", detail.RunningPotTotal, detail.PreviousPotTotal)
	}
	if detail.PotDisplay != "$50.00" {
		t.Errorf("Expected pot display $50.00, got %s", detail.PotDisplay)
	}
	if len(detail.Participants) != 1 {
		t.Errorf("Expected 1 participant, got %d", len(detail.Participants))
	}

	loose := testutil.CreateTestSession(t, conn, "", 1, models.StatusLobby)
	detail, err = store.GetSessionDetail(ctx, loose)
	if err != nil {
		t.Fatalf("GetSessionDetail() error: %v", err)
	}
	if detail.RunningPotTotal != 25 || detail.PreviousPotTotal != 0 {
		t.Errorf("Expected standalone pots 25/0, got %v/%v", detail.RunningPotTotal, detail.PreviousPotTotal)
	}

	if _, err := store.GetSessionDetail(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListSessionsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	week1 := testutil.CreateTestSession(t, conn, "", 1, models.StatusCompleted)
	alive := testutil.AddTestParticipant(t, conn, week1, "Ada", 1)
	out := testutil.AddTestParticipant(t, conn, week1, "Bo", 2)
	if _, err := conn.Exec(`UPDATE participants SET status = $1 WHERE id = $2`, models.ParticipantEliminated, out); err != nil {
		t.Fatalf("Failed to eliminate: %v", err)
	}
	week2 := testutil.CreateTestSession(t, conn, "", 2, models.StatusVoting)
	testutil.AddTestParticipant(t, conn, week2, "Cy", 1)

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != week2 {
		t.Fatalf("Expected latest week first, got %+v", sessions)
	}
	if len(sessions[1].Participants) != 2 {
		t.Errorf("Expected 2 participants in week 1, got %d", len(sessions[1].Participants))
	}

	board, err := store.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard() error: %v", err)
	}
	if len(board.Sessions) != 1 || board.Sessions[0].ID != week1 {
		t.Errorf("Expected only finished sessions on the board, got %d", len(board.Sessions))
	}
	if len(board.Survivors) != 1 || board.Survivors[0].ID != alive || board.Survivors[0].Week != 1 {
		t.Errorf("Expected Ada as sole survivor, got %+v", board.Survivors)
	}

	if err := store.DeleteSession(ctx, week1); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM participants WHERE session_id = $1`, week1); n != 0 {
		t.Errorf("Expected participants cascaded, got %d", n)
	}
	if err := store.DeleteSession(ctx, week1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
