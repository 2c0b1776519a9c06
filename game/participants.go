// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/squid-demos/db"
	"github.com/danielhkuo/squid-demos/models"
)

// AddParticipant registers a player in a session. A zero player number
// takes the next free one.
func (s *Store) AddParticipant(ctx context.Context, req models.CreateParticipantRequest) (*models.Participant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.SessionID == "" {
		return nil, validationf("session_id is required")
	}
	if req.Name == "" {
		return nil, validationf("name is required")
	}
	if req.PlayerNumber < 0 {
		return nil, validationf("player_number must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := getSession(ctx, tx, req.SessionID)
	if err != nil {
		return nil, err
	}
	// Once results are in, a new player would be alive without ever being ranked
	if session.Status != models.StatusLobby && session.Status != models.StatusVoting {
		return nil, ErrSessionLocked
	}

	if req.PlayerNumber == 0 {
		var highest sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT MAX(player_number) FROM participants WHERE session_id = $1
		`, req.SessionID).Scan(&highest)
		if err != nil {
			return nil, fmt.Errorf("failed to query player numbers: %w", err)
		}
		req.PlayerNumber = int(highest.Int64) + 1
	}

	p := models.Participant{
		ID:           uuid.NewString(),
		SessionID:    req.SessionID,
		Name:         req.Name,
		Topic:        req.Topic,
		ImageURL:     req.ImageURL,
		PlayerNumber: req.PlayerNumber,
		Status:       models.ParticipantAlive,
		VoteCount:    0,
		DemoURL:      req.DemoURL,
		CreatedAt:    s.now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO participants (id, session_id, name, topic, image_url, player_number, status, vote_count, demo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.SessionID, p.Name, p.Topic, p.ImageURL, p.PlayerNumber, p.Status, p.VoteCount, nullable(p.DemoURL), p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return nil, ErrPlayerNumberTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit participant: %w", err)
	}
	return &p, nil
}

// UpdateParticipant edits the display fields of a participant. Status and
// vote_count are owned by the results tally and cannot be set here.
func (s *Store) UpdateParticipant(ctx context.Context, id string, req models.UpdateParticipantRequest) (*models.Participant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if id == "" {
		return nil, validationf("participant id is required")
	}
	if req.Name == "" {
		return nil, validationf("name is required")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE participants
		SET name = $1, topic = $2, image_url = $3, demo_url = $4
		WHERE id = $5
	`, req.Name, req.Topic, req.ImageURL, nullable(req.DemoURL), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}

	p, err := scanParticipant(s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}
	return &p, nil
}

// DeleteParticipant removes a participant and the votes cast for them
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	if id == "" {
		return validationf("participant id is required")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	return nil
}
