// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/squid-demos/models"
)

// statusOrder is the only path a session may take
var statusOrder = []string{
	models.StatusLobby,
	models.StatusVoting,
	models.StatusResults,
	models.StatusCompleted,
}

// ValidStatus reports whether status is one of the four session statuses
func ValidStatus(status string) bool {
	return statusIndex(status) >= 0
}

func statusIndex(status string) int {
	for i, s := range statusOrder {
		if s == status {
			return i
		}
	}
	return -1
}

// CanTransition reports whether from → to is a single forward step
func CanTransition(from, to string) bool {
	i, j := statusIndex(from), statusIndex(to)
	return i >= 0 && j == i+1
}

// TransitionSession moves a session to target. Entering results tallies
// the votes and eliminates the bottom two; completing a finale closes its
// season. Everything commits together with the status change or not at all.
func (s *Store) TransitionSession(ctx context.Context, sessionID, target string) (*models.SessionWithParticipants, error) {
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, target)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := getSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(session.Status, target) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, session.Status, target)
	}

	switch {
	case target == models.StatusResults:
		if err := tallyAndEliminate(ctx, tx, sessionID); err != nil {
			return nil, err
		}
	case target == models.StatusCompleted && session.IsFinale && session.SeasonID != nil:
		if err := closeFinaleSeason(ctx, tx, *session.SeasonID, sessionID); err != nil {
			return nil, err
		}
	}

	// Conditional on the status read above so a concurrent transition of
	// the same session cannot apply twice.
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET status = $1 WHERE id = $2 AND status = $3
	`, target, sessionID, session.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: session status changed concurrently", ErrInvalidTransition)
	}
	session.Status = target

	participants, err := listParticipants(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	return &models.SessionWithParticipants{Session: session, Participants: participants}, nil
}

// tallyAndEliminate recomputes vote_count from the votes table and marks
// the bottom participants eliminated, everyone else alive.
func tallyAndEliminate(ctx context.Context, q queryer, sessionID string) error {
	participants, err := listParticipants(ctx, q, sessionID)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(participants))
	for _, p := range participants {
		counts[p.ID] = 0
	}

	rows, err := q.QueryContext(ctx, `SELECT participant_id FROM votes WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var participantID string
		if err := rows.Scan(&participantID); err != nil {
			return fmt.Errorf("failed to scan vote: %w", err)
		}
		if _, ok := counts[participantID]; ok {
			counts[participantID]++
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read votes: %w", err)
	}

	for i := range participants {
		participants[i].VoteCount = counts[participants[i].ID]
	}

	eliminated := make(map[string]bool)
	for _, p := range BottomParticipants(participants, models.EliminatedPerRound) {
		eliminated[p.ID] = true
	}

	for _, p := range participants {
		status := models.ParticipantAlive
		if eliminated[p.ID] {
			status = models.ParticipantEliminated
		}
		_, err := q.ExecContext(ctx, `
			UPDATE participants SET vote_count = $1, status = $2 WHERE id = $3
		`, p.VoteCount, status, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
		}
	}

	return nil
}

// BottomParticipants returns the n participants with the fewest votes.
// Ties go to the lower player number, then the lower ID.
func BottomParticipants(participants []models.Participant, n int) []models.Participant {
	ranked := make([]models.Participant, len(participants))
	copy(ranked, participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount < b.VoteCount
		}
		if a.PlayerNumber != b.PlayerNumber {
			return a.PlayerNumber < b.PlayerNumber
		}
		return a.ID < b.ID
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// TopParticipant returns the participant with the most votes, ties going
// to the lower player number. ok is false for an empty list.
func TopParticipant(participants []models.Participant) (top models.Participant, ok bool) {
	for _, p := range participants {
		if !ok ||
			p.VoteCount > top.VoteCount ||
			(p.VoteCount == top.VoteCount && p.PlayerNumber < top.PlayerNumber) {
			top, ok = p, true
		}
	}
	return top, ok
}

// closeFinaleSeason records the winner and prize pot and closes the season
// the finale belongs to.
func closeFinaleSeason(ctx context.Context, q queryer, seasonID, finaleID string) error {
	participants, err := listParticipants(ctx, q, finaleID)
	if err != nil {
		return err
	}

	var winner *string
	if top, ok := TopParticipant(participants); ok {
		winner = &top.Name
	}

	pot, err := seasonPot(ctx, q, seasonID)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE seasons SET status = $1, winner_name = $2, total_prize_pot = $3
		WHERE id = $4 AND status = $5
	`, models.SeasonClosed, nullable(winner), pot.InexactFloat64(), seasonID, models.SeasonFinale)
	if err != nil {
		return fmt.Errorf("failed to close season: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close season: %w", err)
	}
	if n == 0 {
		return ErrSeasonNotInFinale
	}
	return nil
}

// seasonPot sums the pot contributions of every session in the season
func seasonPot(ctx context.Context, q queryer, seasonID string) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx, `SELECT pot_contribution FROM sessions WHERE season_id = $1`, seasonID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query season pot: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var contribution float64
		if err := rows.Scan(&contribution); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan pot contribution: %w", err)
		}
		total = total.Add(decimal.NewFromFloat(contribution))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read season pot: %w", err)
	}
	return total, nil
}
