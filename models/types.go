// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Season status constants
const (
	SeasonActive = "active"
	SeasonFinale = "finale"
	SeasonClosed = "closed"
)

// Session status constants, in lifecycle order
const (
	StatusLobby     = "lobby"
	StatusVoting    = "voting"
	StatusResults   = "results"
	StatusCompleted = "completed"
)

// Participant status constants
const (
	ParticipantAlive      = "alive"
	ParticipantEliminated = "eliminated"
)

const (
	MaxVotesPerDevice  = 2
	EliminatedPerRound = 2

	// FinaleWeekNumber marks finale sessions
	FinaleWeekNumber = 99
)

// Request types

type CreateSeasonRequest struct {
	Name string `json:"name"`
}

type CreateSessionRequest struct {
	Title           string   `json:"title"`
	WeekNumber      int      `json:"week_number"`
	SessionDate     string   `json:"session_date"`
	SeasonID        *string  `json:"season_id"`
	PotContribution *float64 `json:"pot_contribution"`
	Slug            string   `json:"slug"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateParticipantRequest struct {
	SessionID    string  `json:"session_id"`
	Name         string  `json:"name"`
	Topic        string  `json:"topic"`
	ImageURL     string  `json:"image_url"`
	PlayerNumber int     `json:"player_number"`
	DemoURL      *string `json:"demo_url"`
}

type UpdateParticipantRequest struct {
	Name     string  `json:"name"`
	Topic    string  `json:"topic"`
	ImageURL string  `json:"image_url"`
	DemoURL  *string `json:"demo_url"`
}

// ParticipantID is the single-vote form older clients still send
type CastVotesRequest struct {
	SessionID      string   `json:"session_id"`
	ParticipantIDs []string `json:"participant_ids"`
	ParticipantID  string   `json:"participant_id"`
	DeviceID       string   `json:"device_id"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

// Response types

type CloseSeasonResponse struct {
	Season         Season  `json:"season"`
	FinaleSession  Session `json:"finaleSession"`
	FinalistsCount int     `json:"finalistsCount"`
}

type MyVotesResponse struct {
	SessionID      string   `json:"session_id"`
	ParticipantIDs []string `json:"participant_ids"`
	Remaining      int      `json:"remaining"`
}

type LeaderboardResponse struct {
	Sessions  []SessionWithParticipants `json:"sessions"`
	Survivors []Survivor                `json:"survivors"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Domain types

type Season struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	WinnerName    *string   `json:"winner_name,omitempty"`
	TotalPrizePot *float64  `json:"total_prize_pot,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Session struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	WeekNumber      int       `json:"week_number"`
	SessionDate     string    `json:"session_date"`
	Status          string    `json:"status"`
	SeasonID        *string   `json:"season_id"`
	IsFinale        bool      `json:"is_finale"`
	PotContribution float64   `json:"pot_contribution"`
	CreatedAt       time.Time `json:"created_at"`
}

type Participant struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Name         string    `json:"name"`
	Topic        string    `json:"topic"`
	ImageURL     string    `json:"image_url"`
	PlayerNumber int       `json:"player_number"`
	Status       string    `json:"status"`
	VoteCount    int       `json:"vote_count"`
	DemoURL      *string   `json:"demo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Vote struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	DeviceID      string    `json:"-"` // Never expose in JSON
	CreatedAt     time.Time `json:"created_at"`
}

type SessionWithParticipants struct {
	Session
	Participants []Participant `json:"participants"`
}

// SessionDetail is what the voting screen renders
type SessionDetail struct {
	SessionWithParticipants
	RunningPotTotal  float64 `json:"running_pot_total"`
	PreviousPotTotal float64 `json:"previous_pot_total"`
	PotDisplay       string  `json:"pot_display"`
}

type SeasonWithSessions struct {
	Season
	Sessions []SessionWithParticipants `json:"sessions"`
}

// Survivor is an alive participant annotated with where they survived
type Survivor struct {
	Participant
	Week         int    `json:"week"`
	SessionTitle string `json:"session_title"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
