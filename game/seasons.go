// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/squid-demos/models"
)

type finalist struct {
	name     string
	topic    string
	imageURL string
	demoURL  sql.NullString
}

// CloseSeason ends the regular weeks of an active season. Every alive
// participant of its weekly sessions is copied into a new finale session
// and the season moves to finale. A new season is opened separately once
// the finale completes.
func (s *Store) CloseSeason(ctx context.Context, seasonID string) (*models.CloseSeasonResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	season, err := getSeason(ctx, tx, seasonID)
	if err != nil {
		return nil, err
	}
	if season.Status != models.SeasonActive {
		if season.Status == models.SeasonFinale {
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrSeasonNotActive
	}

	var finales int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions WHERE season_id = $1 AND is_finale = $2
	`, seasonID, true).Scan(&finales)
	if err != nil {
		return nil, fmt.Errorf("failed to check for finale: %w", err)
	}
	if finales > 0 {
		return nil, ErrAlreadyFinalized
	}

	finalists, err := collectFinalists(ctx, tx, seasonID)
	if err != nil {
		return nil, err
	}

	// The season flips to finale before the finale session exists; both
	// land in the same commit.
	res, err := tx.ExecContext(ctx, `
		UPDATE seasons SET status = $1 WHERE id = $2 AND status = $3
	`, models.SeasonFinale, seasonID, models.SeasonActive)
	if err != nil {
		return nil, fmt.Errorf("failed to update season: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update season: %w", err)
	} else if n == 0 {
		return nil, ErrAlreadyFinalized
	}
	season.Status = models.SeasonFinale

	slug, err := uniqueSlug(ctx, tx, slugify(season.Name)+"-finale")
	if err != nil {
		return nil, err
	}

	finale := models.Session{
		ID:              uuid.NewString(),
		Slug:            slug,
		Title:           season.Name + " - Season Finale",
		WeekNumber:      models.FinaleWeekNumber,
		SessionDate:     s.today(),
		Status:          models.StatusLobby,
		SeasonID:        &season.ID,
		IsFinale:        true,
		PotContribution: 0,
		CreatedAt:       s.now().UTC(),
	}
	if err := insertSession(ctx, tx, finale); err != nil {
		return nil, err
	}

	for i, f := range finalists {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO participants (id, session_id, name, topic, image_url, player_number, status, vote_count, demo_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.NewString(), finale.ID, f.name, f.topic, f.imageURL, i+1,
			models.ParticipantAlive, 0, f.demoURL, finale.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert finalist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit season close: %w", err)
	}

	return &models.CloseSeasonResponse{
		Season:         season,
		FinaleSession:  finale,
		FinalistsCount: len(finalists),
	}, nil
}

// collectFinalists returns alive participants of the season's weekly
// sessions, in week order then player order.
func collectFinalists(ctx context.Context, q queryer, seasonID string) ([]finalist, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.name, p.topic, p.image_url, p.demo_url
		FROM participants p
		JOIN sessions s ON s.id = p.session_id
		WHERE s.season_id = $1 AND s.is_finale = $2 AND p.status = $3
		ORDER BY s.week_number, s.created_at, s.id, p.player_number
	`, seasonID, false, models.ParticipantAlive)
	if err != nil {
		return nil, fmt.Errorf("failed to query finalists: %w", err)
	}
	defer rows.Close()

	var finalists []finalist
	for rows.Next() {
		var f finalist
		if err := rows.Scan(&f.name, &f.topic, &f.imageURL, &f.demoURL); err != nil {
			return nil, fmt.Errorf("failed to scan finalist: %w", err)
		}
		finalists = append(finalists, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read finalists: %w", err)
	}
	return finalists, nil
}

// CreateSeason opens a new active season. Only one season may be active
// or in its finale at a time.
func (s *Store) CreateSeason(ctx context.Context, name string) (*models.Season, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var running int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM seasons WHERE status IN ($1, $2)
	`, models.SeasonActive, models.SeasonFinale).Scan(&running)
	if err != nil {
		return nil, fmt.Errorf("failed to check running seasons: %w", err)
	}
	if running > 0 {
		return nil, ErrSeasonInProgress
	}

	season := models.Season{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    models.SeasonActive,
		CreatedAt: s.now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO seasons (id, name, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, season.ID, season.Name, season.Status, season.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert season: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit season: %w", err)
	}
	return &season, nil
}

// CurrentSeason is the newest season that is active or in its finale.
// It is always derived, never stored.
func (s *Store) CurrentSeason(ctx context.Context) (*models.Season, error) {
	season, err := scanSeason(s.db.QueryRowContext(ctx, `
		SELECT `+seasonColumns+`
		FROM seasons
		WHERE status IN ($1, $2)
		ORDER BY created_at DESC
		LIMIT 1
	`, models.SeasonActive, models.SeasonFinale))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("current season: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current season: %w", err)
	}
	return &season, nil
}

// ListSeasons returns every season newest first with its sessions
func (s *Store) ListSeasons(ctx context.Context) ([]models.SeasonWithSessions, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seasonColumns+` FROM seasons ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seasons: %w", err)
	}
	rows.Close()

	result := make([]models.SeasonWithSessions, 0, len(seasons))
	for _, season := range seasons {
		sessions, err := querySessions(ctx, s.db, `
			SELECT `+sessionColumns+`
			FROM sessions
			WHERE season_id = $1
			ORDER BY week_number, created_at
		`, season.ID)
		if err != nil {
			return nil, err
		}
		full, err := withParticipants(ctx, s.db, sessions)
		if err != nil {
			return nil, err
		}
		result = append(result, models.SeasonWithSessions{Season: season, Sessions: full})
	}
	return result, nil
}

// DeleteSeason removes a season; its sessions are kept but detached
func (s *Store) DeleteSeason(ctx context.Context, seasonID string) error {
	if seasonID == "" {
		return validationf("season id is required")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM seasons WHERE id = $1`, seasonID)
	if err != nil {
		return fmt.Errorf("failed to delete season: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete season: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	return nil
}
