// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/squid-demos/models"
	"github.com/danielhkuo/squid-demos/testutil"
)

func TestCastVotesHandler(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.store, env.hub)

	voting := testutil.CreateTestSession(t, env.db, "", 1, models.StatusVoting)
	a := testutil.AddTestParticipant(t, env.db, voting, "Ada", 1)
	b := testutil.AddTestParticipant(t, env.db, voting, "Bo", 2)
	c := testutil.AddTestParticipant(t, env.db, voting, "Cy", 3)

	lobby := testutil.CreateTestSession(t, env.db, "", 2, models.StatusLobby)
	lobbyPlayer := testutil.AddTestParticipant(t, env.db, lobby, "Lee", 1)

	device := uuid.NewString()
	headerDevice := uuid.NewString()
	legacyDevice := uuid.NewString()

	tests := []struct {
		name           string
		body           interface{}
		headers        map[string]string
		expectedStatus int
		expectedVotes  int
	}{
		{
			name:           "missing session",
			body:           models.CastVotesRequest{ParticipantIDs: []string{a}, DeviceID: device},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing participants",
			body:           models.CastVotesRequest{SessionID: voting, DeviceID: device},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing device",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{a}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "device not a uuid",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{a}, DeviceID: "phone-1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "participant from another session",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{lobbyPlayer}, DeviceID: device},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "session not voting",
			body:           models.CastVotesRequest{SessionID: lobby, ParticipantIDs: []string{lobbyPlayer}, DeviceID: device},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "too many at once",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{a, b, c}, DeviceID: device},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "two votes",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{a, b}, DeviceID: device},
			expectedStatus: http.StatusCreated,
			expectedVotes:  2,
		},
		{
			name:           "quota used up",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{c}, DeviceID: device},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "device id from header",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{c}},
			headers:        map[string]string{DeviceIDHeader: headerDevice},
			expectedStatus: http.StatusCreated,
			expectedVotes:  1,
		},
		{
			name:           "duplicate vote",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantIDs: []string{c}},
			headers:        map[string]string{DeviceIDHeader: headerDevice},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "legacy single participant",
			body:           models.CastVotesRequest{SessionID: voting, ParticipantID: a, DeviceID: legacyDevice},
			expectedStatus: http.StatusCreated,
			expectedVotes:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/votes", tt.body, tt.headers)
			w := httptest.NewRecorder()

			handler.CastVotes(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				var errResp models.ErrorResponse
				testutil.AssertJSON(t, w, &errResp)
				if errResp.Message == "" {
					t.Error("Expected an error message")
				}
				return
			}

			var votes []models.Vote
			testutil.AssertJSON(t, w, &votes)
			if len(votes) != tt.expectedVotes {
				t.Errorf("Expected %d votes, got %d", tt.expectedVotes, len(votes))
			}
			for _, v := range votes {
				if v.ID == "" || v.SessionID != voting {
					t.Errorf("Unexpected vote row: %+v", v)
				}
			}
		})
	}

	if n := testutil.CountRows(t, env.db, `SELECT COUNT(*) FROM votes WHERE session_id = $1`, lobby); n != 0 {
		t.Errorf("Expected no votes stored for lobby session, got %d", n)
	}
	if n := testutil.CountRows(t, env.db, `SELECT COUNT(*) FROM votes WHERE device_id = $1`, device); n != 2 {
		t.Errorf("Expected device capped at 2 votes, got %d", n)
	}
}

func TestCastVotesHandler_QuotaMessage(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.store, env.hub)

	session := testutil.CreateTestSession(t, env.db, "", 1, models.StatusVoting)
	a := testutil.AddTestParticipant(t, env.db, session, "A", 1)
	b := testutil.AddTestParticipant(t, env.db, session, "B", 2)
	c := testutil.AddTestParticipant(t, env.db, session, "C", 3)
	device := uuid.NewString()

	w := httptest.NewRecorder()
	handler.CastVotes(w, testutil.MakeRequest("POST", "/votes",
		models.CastVotesRequest{SessionID: session, ParticipantIDs: []string{a}, DeviceID: device}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = httptest.NewRecorder()
	handler.CastVotes(w, testutil.MakeRequest("POST", "/votes",
		models.CastVotesRequest{SessionID: session, ParticipantIDs: []string{b, c}, DeviceID: device}, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)

	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	if !strings.Contains(errResp.Message, "1 vote(s) remaining") {
		t.Errorf("Expected remaining allowance in message, got %q", errResp.Message)
	}
}

func TestCastVotesHandler_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.store, env.hub)

	req := httptest.NewRequest("POST", "/votes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.CastVotes(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestMyVotesHandler(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.store, env.hub)

	session := testutil.CreateTestSession(t, env.db, "", 1, models.StatusVoting)
	a := testutil.AddTestParticipant(t, env.db, session, "A", 1)
	device := uuid.NewString()
	testutil.CastTestVote(t, env.db, session, a, device)

	tests := []struct {
		name           string
		sessionID      string
		device         string
		expectedStatus int
		expectedIDs    int
		remaining      int
	}{
		{"voted once", session, device, http.StatusOK, 1, 1},
		{"fresh device", session, uuid.NewString(), http.StatusOK, 0, 2},
		{"bad device", session, "nope", http.StatusBadRequest, 0, 0},
		{"unknown session", uuid.NewString(), device, http.StatusNotFound, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/sessions/"+tt.sessionID+"/my-votes", nil,
				map[string]string{DeviceIDHeader: tt.device})
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.MyVotes(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp models.MyVotesResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.ParticipantIDs) != tt.expectedIDs || resp.Remaining != tt.remaining {
				t.Errorf("Expected %d ids and %d remaining, got %+v", tt.expectedIDs, tt.remaining, resp)
			}
		})
	}
}
