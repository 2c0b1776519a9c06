// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/squid-demos/auth"
	"github.com/danielhkuo/squid-demos/db"
	"github.com/danielhkuo/squid-demos/models"
)

const slugAttempts = 5

// CreateSession adds a weekly session. The slug defaults to
// episode-<week> and gets a random suffix if it is already taken.
func (s *Store) CreateSession(ctx context.Context, req models.CreateSessionRequest, defaultPot float64) (*models.Session, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, validationf("title is required")
	}
	if req.WeekNumber < 1 {
		return nil, validationf("week_number must be at least 1")
	}
	if req.WeekNumber == models.FinaleWeekNumber {
		return nil, validationf("week_number %d is reserved for season finales", models.FinaleWeekNumber)
	}
	if req.SessionDate == "" {
		req.SessionDate = s.today()
	} else if _, err := time.Parse(time.DateOnly, req.SessionDate); err != nil {
		return nil, validationf("session_date must be YYYY-MM-DD")
	}

	pot := defaultPot
	if req.PotContribution != nil {
		pot = *req.PotContribution
	}
	if pot < 0 {
		return nil, validationf("pot_contribution cannot be negative")
	}

	var seasonID *string
	if req.SeasonID != nil && *req.SeasonID != "" {
		if _, err := getSeason(ctx, s.db, *req.SeasonID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, validationf("season %s does not exist", *req.SeasonID)
			}
			return nil, err
		}
		seasonID = req.SeasonID
	}

	base := slugify(req.Slug)
	if base == "" {
		base = "episode-" + strconv.Itoa(req.WeekNumber)
	}

	session := models.Session{
		ID:              uuid.NewString(),
		Title:           req.Title,
		WeekNumber:      req.WeekNumber,
		SessionDate:     req.SessionDate,
		Status:          models.StatusLobby,
		SeasonID:        seasonID,
		IsFinale:        false,
		PotContribution: pot,
		CreatedAt:       s.now().UTC(),
	}

	// The check in uniqueSlug can race another insert; the UNIQUE
	// constraint catches that and we pick a new suffix.
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := uniqueSlug(ctx, s.db, base)
		if err != nil {
			return nil, err
		}
		session.Slug = slug

		err = insertSession(ctx, s.db, session)
		if err == nil {
			return &session, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: could not allocate a unique slug for %q", ErrStateConflict, base)
}

func insertSession(ctx context.Context, q queryer, session models.Session) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sessions (id, slug, title, week_number, session_date, status, season_id, is_finale, pot_contribution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, session.ID, session.Slug, session.Title, session.WeekNumber, session.SessionDate,
		session.Status, nullable(session.SeasonID), session.IsFinale, session.PotContribution, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// uniqueSlug returns base if unused, otherwise base with a short random suffix
func uniqueSlug(ctx context.Context, q queryer, base string) (string, error) {
	candidate := base
	for attempt := 0; attempt < slugAttempts; attempt++ {
		var exists bool
		err := q.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM sessions WHERE slug = $1)
		`, candidate).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}

		suffix, err := auth.GenerateSlugSuffix()
		if err != nil {
			return "", err
		}
		candidate = base + "-" + suffix
	}
	return "", fmt.Errorf("%w: could not allocate a unique slug for %q", ErrStateConflict, base)
}

// slugify lowercases s and collapses everything that is not a letter or
// digit into single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ListSessions returns every session, latest week first, with participants
func (s *Store) ListSessions(ctx context.Context) ([]models.SessionWithParticipants, error) {
	sessions, err := querySessions(ctx, s.db, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY week_number DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return withParticipants(ctx, s.db, sessions)
}

// GetSession returns a single session without participants
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := getSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionDetail returns a session, its participants and the season's
// running prize pot.
func (s *Store) GetSessionDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	session, err := getSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	participants, err := listParticipants(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}

	running := decimal.NewFromFloat(session.PotContribution)
	previous := decimal.Zero
	if session.SeasonID != nil {
		siblings, err := querySessions(ctx, s.db, `
			SELECT `+sessionColumns+` FROM sessions WHERE season_id = $1
		`, *session.SeasonID)
		if err != nil {
			return nil, err
		}
		running, previous = PotTotals(siblings, session)
	}

	return &models.SessionDetail{
		SessionWithParticipants: models.SessionWithParticipants{
			Session:      session,
			Participants: participants,
		},
		RunningPotTotal:  running.InexactFloat64(),
		PreviousPotTotal: previous.InexactFloat64(),
		PotDisplay:       FormatPot(running),
	}, nil
}

// PotTotals sums pot contributions across a season: running covers every
// session, previous only the weekly sessions before current.
func PotTotals(seasonSessions []models.Session, current models.Session) (running, previous decimal.Decimal) {
	running, previous = decimal.Zero, decimal.Zero
	for _, s := range seasonSessions {
		contribution := decimal.NewFromFloat(s.PotContribution)
		running = running.Add(contribution)
		if !s.IsFinale && s.WeekNumber < current.WeekNumber {
			previous = previous.Add(contribution)
		}
	}
	return running, previous
}

// FormatPot renders a pot as dollars with thousands separators
func FormatPot(pot decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", pot.Round(2).InexactFloat64())
}

// DeleteSession removes a session with its participants and votes
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return validationf("session id is required")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// Leaderboard returns sessions that have reached results, oldest week
// first, and every participant still alive in them.
func (s *Store) Leaderboard(ctx context.Context) (*models.LeaderboardResponse, error) {
	sessions, err := querySessions(ctx, s.db, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE status IN ($1, $2)
		ORDER BY week_number, created_at
	`, models.StatusResults, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	full, err := withParticipants(ctx, s.db, sessions)
	if err != nil {
		return nil, err
	}

	survivors := []models.Survivor{}
	for _, session := range full {
		for _, p := range session.Participants {
			if p.Status == models.ParticipantAlive {
				survivors = append(survivors, models.Survivor{
					Participant:  p,
					Week:         session.WeekNumber,
					SessionTitle: session.Title,
				})
			}
		}
	}

	return &models.LeaderboardResponse{Sessions: full, Survivors: survivors}, nil
}
