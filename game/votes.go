// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/squid-demos/db"
	"github.com/danielhkuo/squid-demos/models"
)

// CastVotes records one vote per participant for the device. Tallies are
// not touched here; they are computed once when the session enters results.
//
// The per-device cap is enforced twice: against the vote rows themselves
// and through a compare-and-set on the device_quota ledger, so two
// concurrent requests from one device cannot both pass the count check.
func (s *Store) CastVotes(ctx context.Context, sessionID string, participantIDs []string, deviceID string) ([]models.Vote, error) {
	if sessionID == "" || deviceID == "" || len(participantIDs) == 0 {
		return nil, validationf("session_id, participant_ids and device_id are required")
	}
	for _, id := range participantIDs {
		if id == "" {
			return nil, validationf("participant id cannot be empty")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = $1`, sessionID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrVotingClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	if status != models.StatusVoting {
		return nil, ErrVotingClosed
	}

	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			return nil, ErrDuplicateVote
		}
		seen[id] = true
	}

	if err := checkParticipantsInSession(ctx, tx, sessionID, participantIDs); err != nil {
		return nil, err
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votes WHERE session_id = $1 AND device_id = $2
	`, sessionID, deviceID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to count device votes: %w", err)
	}
	if existing+len(participantIDs) > models.MaxVotesPerDevice {
		return nil, newQuotaError(existing)
	}

	if err := reserveQuota(ctx, tx, sessionID, deviceID, existing+len(participantIDs)); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	votes := make([]models.Vote, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		vote := models.Vote{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			ParticipantID: participantID,
			DeviceID:      deviceID,
			CreatedAt:     now,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO votes (id, session_id, participant_id, device_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, vote.ID, vote.SessionID, vote.ParticipantID, vote.DeviceID, vote.CreatedAt)
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}
		votes = append(votes, vote)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit votes: %w", err)
	}

	return votes, nil
}

func checkParticipantsInSession(ctx context.Context, q queryer, sessionID string, participantIDs []string) error {
	rows, err := q.QueryContext(ctx, `SELECT id FROM participants WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	valid := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		valid[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read participants: %w", err)
	}

	for _, id := range participantIDs {
		if !valid[id] {
			return validationf("participant %s is not in this session", id)
		}
	}
	return nil
}

// reserveQuota moves the ledger row to total. The update only applies if
// the row still holds the value read in this transaction; a concurrent
// writer for the same device makes it miss.
func reserveQuota(ctx context.Context, tx *sql.Tx, sessionID, deviceID string, total int) error {
	var used int
	err := tx.QueryRowContext(ctx, `
		SELECT used FROM device_quota WHERE session_id = $1 AND device_id = $2
	`, sessionID, deviceID).Scan(&used)

	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO device_quota (session_id, device_id, used)
			VALUES ($1, $2, $3)
		`, sessionID, deviceID, total)
		if db.IsUniqueViolation(err) {
			return ErrConcurrentVote
		}
		if err != nil {
			return fmt.Errorf("failed to reserve vote quota: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read vote quota: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE device_quota SET used = $1
		WHERE session_id = $2 AND device_id = $3 AND used = $4
	`, total, sessionID, deviceID, used)
	if err != nil {
		return fmt.Errorf("failed to reserve vote quota: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reserve vote quota: %w", err)
	}
	if n == 0 {
		return ErrConcurrentVote
	}
	return nil
}

// DeviceVotes returns the participants a device has voted for in a session
// and how many votes it has left.
func (s *Store) DeviceVotes(ctx context.Context, sessionID, deviceID string) (*models.MyVotesResponse, error) {
	if sessionID == "" || deviceID == "" {
		return nil, validationf("session_id and device_id are required")
	}
	if _, err := getSession(ctx, s.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id FROM votes
		WHERE session_id = $1 AND device_id = $2
		ORDER BY created_at, participant_id
	`, sessionID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device votes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device votes: %w", err)
	}

	return &models.MyVotesResponse{
		SessionID:      sessionID,
		ParticipantIDs: ids,
		Remaining:      max(models.MaxVotesPerDevice-len(ids), 0),
	}, nil
}

// CountVotes returns the number of ballots cast in a session so far
func (s *Store) CountVotes(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}
