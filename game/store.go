// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/squid-demos/models"
)

// Store runs game operations against the shared database. Multi-step
// operations execute inside a single transaction.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const seasonColumns = `id, name, status, winner_name, total_prize_pot, created_at`

const sessionColumns = `id, slug, title, week_number, session_date, status,
	season_id, is_finale, pot_contribution, created_at`

const participantColumns = `id, session_id, name, topic, image_url, player_number,
	status, vote_count, demo_url, created_at`

func scanSeason(row rowScanner) (models.Season, error) {
	var s models.Season
	var winner sql.NullString
	var pot sql.NullFloat64
	err := row.Scan(&s.ID, &s.Name, &s.Status, &winner, &pot, &s.CreatedAt)
	if err != nil {
		return models.Season{}, err
	}
	if winner.Valid {
		s.WinnerName = &winner.String
	}
	if pot.Valid {
		s.TotalPrizePot = &pot.Float64
	}
	return s, nil
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var seasonID sql.NullString
	err := row.Scan(
		&s.ID, &s.Slug, &s.Title, &s.WeekNumber, &s.SessionDate, &s.Status,
		&seasonID, &s.IsFinale, &s.PotContribution, &s.CreatedAt,
	)
	if err != nil {
		return models.Session{}, err
	}
	if seasonID.Valid {
		s.SeasonID = &seasonID.String
	}
	return s, nil
}

func scanParticipant(row rowScanner) (models.Participant, error) {
	var p models.Participant
	var demoURL sql.NullString
	err := row.Scan(
		&p.ID, &p.SessionID, &p.Name, &p.Topic, &p.ImageURL, &p.PlayerNumber,
		&p.Status, &p.VoteCount, &demoURL, &p.CreatedAt,
	)
	if err != nil {
		return models.Participant{}, err
	}
	if demoURL.Valid {
		p.DemoURL = &demoURL.String
	}
	return p, nil
}

func getSeason(ctx context.Context, q queryer, id string) (models.Season, error) {
	season, err := scanSeason(q.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Season{}, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Season{}, fmt.Errorf("failed to query season: %w", err)
	}
	return season, nil
}

func getSession(ctx context.Context, q queryer, id string) (models.Session, error) {
	session, err := scanSession(q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

func listParticipants(ctx context.Context, q queryer, sessionID string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE session_id = $1
		ORDER BY player_number, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return participants, nil
}

func querySessions(ctx context.Context, q queryer, query string, args ...any) ([]models.Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

// withParticipants loads the participants of every session in one query
func withParticipants(ctx context.Context, q queryer, sessions []models.Session) ([]models.SessionWithParticipants, error) {
	result := make([]models.SessionWithParticipants, len(sessions))
	if len(sessions) == 0 {
		return result, nil
	}

	index := make(map[string]int, len(sessions))
	placeholders := make([]string, len(sessions))
	args := make([]any, len(sessions))
	for i, s := range sessions {
		result[i] = models.SessionWithParticipants{Session: s, Participants: []models.Participant{}}
		index[s.ID] = i
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = s.ID
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE session_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY player_number, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		i := index[p.SessionID]
		result[i].Participants = append(result[i].Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return result, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *Store) today() string {
	return s.now().UTC().Format(time.DateOnly)
}
