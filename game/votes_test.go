// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/squid-demos/models"
	"github.com/danielhkuo/squid-demos/testutil"
)

const testDevice = "6f1c2a8e-4b7d-4f0e-9a3b-2d5e8c1f7a90"

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	store := New(conn)
	store.now = func() time.Time {
		return time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	}
	return store, conn
}

func TestCastVotes(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	voting := testutil.CreateTestSession(t, conn, "", 1, models.StatusVoting)
	a := testutil.AddTestParticipant(t, conn, voting, "Ada", 1)
	b := testutil.AddTestParticipant(t, conn, voting, "Bo", 2)
	c := testutil.AddTestParticipant(t, conn, voting, "Cy", 3)

	lobby := testutil.CreateTestSession(t, conn, "", 2, models.StatusLobby)
	lobbyPlayer := testutil.AddTestParticipant(t, conn, lobby, "Lee", 1)

	results := testutil.CreateTestSession(t, conn, "", 3, models.StatusResults)
	resultsPlayer := testutil.AddTestParticipant(t, conn, results, "Rae", 1)

	tests := []struct {
		name      string
		sessionID string
		ids       []string
		device    string
		wantErr   error
		wantVotes int
	}{
		{"missing session id", "", []string{a}, testDevice, ErrValidation, 0},
		{"missing device", voting, []string{a}, "", ErrValidation, 0},
		{"no participants", voting, nil, testDevice, ErrValidation, 0},
		{"repeated id in one request", voting, []string{a, a}, testDevice, ErrDuplicateVote, 0},
		{"session in lobby", lobby, []string{lobbyPlayer}, testDevice, ErrVotingClosed, 0},
		{"repeated id, session in lobby", lobby, []string{lobbyPlayer, lobbyPlayer}, testDevice, ErrVotingClosed, 0},
		{"session in results", results, []string{resultsPlayer}, testDevice, ErrVotingClosed, 0},
		{"unknown session", "missing", []string{a}, testDevice, ErrVotingClosed, 0},
		{"participant from another session", voting, []string{lobbyPlayer}, testDevice, ErrValidation, 0},
		{"three at once", voting, []string{a, b, c}, testDevice, ErrQuotaExceeded, 0},
		{"two at once", voting, []string{a, b}, testDevice, nil, 2},
		{"third vote later", voting, []string{c}, testDevice, ErrQuotaExceeded, 0},
		{"other device", voting, []string{c}, "second-device", nil, 1},
		{"same participant again", voting, []string{c}, "second-device", ErrDuplicateVote, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes, err := store.CastVotes(ctx, tt.sessionID, tt.ids, tt.device)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CastVotes() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CastVotes() unexpected error: %v", err)
			}
			if len(votes) != tt.wantVotes {
				t.Errorf("Expected %d votes, got %d", tt.wantVotes, len(votes))
			}
		})
	}

	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE session_id = $1`, lobby); n != 0 {
		t.Errorf("Expected no votes in lobby session, got %d", n)
	}
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE session_id = $1`, voting); n != 3 {
		t.Errorf("Expected 3 votes in voting session, got %d", n)
	}

	// Votes never touch the tally before results
	var count int
	if err := conn.QueryRow(`SELECT vote_count FROM participants WHERE id = $1`, a).Scan(&count); err != nil {
		t.Fatalf("Failed to read vote_count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected vote_count to stay 0 during voting, got %d", count)
	}
}

func TestCastVotes_QuotaNeverExceeded(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	session := testutil.CreateTestSession(t, conn, "", 1, models.StatusVoting)
	var ids []string
	for i, name := range []string{"A", "B", "C", "D"} {
		ids = append(ids, testutil.AddTestParticipant(t, conn, session, name, i+1))
	}

	if _, err := store.CastVotes(ctx, session, ids[:1], testDevice); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	_, err := store.CastVotes(ctx, session, ids[1:3], testDevice)
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("Expected QuotaError, got %v", err)
	}
	if quotaErr.Remaining != 1 {
		t.Errorf("Expected 1 remaining, got %d", quotaErr.Remaining)
	}

	if _, err := store.CastVotes(ctx, session, ids[1:2], testDevice); err != nil {
		t.Fatalf("second vote failed: %v", err)
	}

	for _, id := range ids[2:] {
		if _, err := store.CastVotes(ctx, session, []string{id}, testDevice); !errors.Is(err, ErrQuotaExceeded) {
			t.Errorf("Expected ErrQuotaExceeded, got %v", err)
		}
	}

	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE session_id = $1 AND device_id = $2`, session, testDevice); n != models.MaxVotesPerDevice {
		t.Errorf("Expected %d votes for device, got %d", models.MaxVotesPerDevice, n)
	}
	if n := testutil.CountRows(t, conn, `SELECT used FROM device_quota WHERE session_id = $1 AND device_id = $2`, session, testDevice); n != models.MaxVotesPerDevice {
		t.Errorf("Expected ledger at %d, got %d", models.MaxVotesPerDevice, n)
	}
}

func TestCastVotes_ConcurrentSameDevice(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	session := testutil.CreateTestSession(t, conn, "", 1, models.StatusVoting)
	var ids []string
	for i := 1; i <= 6; i++ {
		ids = append(ids, testutil.AddTestParticipant(t, conn, session, "Player", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.CastVotes(ctx, session, []string{id}, testDevice)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrConcurrentVote):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded > models.MaxVotesPerDevice {
		t.Errorf("Expected at most %d successful casts, got %d", models.MaxVotesPerDevice, succeeded)
	}
	n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE session_id = $1 AND device_id = $2`, session, testDevice)
	if n != succeeded {
		t.Errorf("Expected %d stored votes, got %d", succeeded, n)
	}
	if n > models.MaxVotesPerDevice {
		t.Errorf("Device exceeded quota: %d votes", n)
	}
}

func TestQuotaError_Message(t *testing.T) {
	err := newQuotaError(1)
	want := "maximum 2 votes allowed per device, you have 1 vote(s) remaining"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Error("Expected QuotaError to match ErrQuotaExceeded")
	}
}

func TestDeviceVotes(t *testing.T) {
	ctx := context.Background()
	store, conn := newTestStore(t)

	session := testutil.CreateTestSession(t, conn, "", 1, models.StatusVoting)
	a := testutil.AddTestParticipant(t, conn, session, "A", 1)
	testutil.AddTestParticipant(t, conn, session, "B", 2)

	resp, err := store.DeviceVotes(ctx, session, testDevice)
	if err != nil {
		t.Fatalf("DeviceVotes() error: %v", err)
	}
	if len(resp.ParticipantIDs) != 0 || resp.Remaining != 2 {
		t.Errorf("Expected fresh device with 2 remaining, got %+v", resp)
	}

	if _, err := store.CastVotes(ctx, session, []string{a}, testDevice); err != nil {
		t.Fatalf("CastVotes() error: %v", err)
	}

	resp, err = store.DeviceVotes(ctx, session, testDevice)
	if err != nil {
		t.Fatalf("DeviceVotes() error: %v", err)
	}
	if len(resp.ParticipantIDs) != 1 || resp.ParticipantIDs[0] != a {
		t.Errorf("Expected [%s], got %v", a, resp.ParticipantIDs)
	}
	if resp.Remaining != 1 {
		t.Errorf("Expected 1 remaining, got %d", resp.Remaining)
	}

	if _, err := store.DeviceVotes(ctx, "missing", testDevice); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	total, err := store.CountVotes(ctx, session)
	if err != nil {
		t.Fatalf("CountVotes() error: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 vote, got %d", total)
	}
}
