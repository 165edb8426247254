package repository

import (
	"context"
	"fmt"

	"footdata/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// StandingRepository handles league table database operations
type StandingRepository struct {
	db *Database
}

// Replace swaps a competition season's league table for the given snapshot
// and reports whether the season record was created by this call. Creation
// signals a season rollover (or first-time bootstrap) to the caller.
//
// The table is replaced wholesale rather than merged: positions shift with
// every result and stale rows must not survive.
func (r *StandingRepository) Replace(ctx context.Context, snapshot *models.StandingsSnapshot) (bool, error) {
	if snapshot.Season == nil {
		return false, fmt.Errorf("standings snapshot for competition %d has no season", snapshot.CompetitionID)
	}

	season := snapshot.Season.ToSeason(snapshot.CompetitionID)
	newSeason, err := r.db.Competitions.UpsertSeason(ctx, season)
	if err != nil {
		return false, fmt.Errorf("failed to upsert season for competition %d: %w", snapshot.CompetitionID, err)
	}

	if err := r.db.Competitions.SetCurrentSeason(ctx, snapshot.CompetitionID, season.SeasonID); err != nil {
		return false, err
	}

	if err := r.replaceTable(ctx, snapshot, season.SeasonID); err != nil {
		return false, err
	}

	log.Debug().
		Int("competition_id", snapshot.CompetitionID).
		Int("season_id", season.SeasonID).
		Int("rows", len(snapshot.Table)).
		Bool("new_season", newSeason).
		Msg("Standings replaced")

	return newSeason, nil
}

func (r *StandingRepository) replaceTable(ctx context.Context, snapshot *models.StandingsSnapshot, seasonID int) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM standings WHERE season_id = $1`, seasonID); err != nil {
		return fmt.Errorf("failed to clear standings: %w", err)
	}

	query := `
		INSERT INTO standings (
			competition_id, season_id, position, team_id, played_games,
			won, draw, lost, points, goals_for, goals_against,
			goal_difference, form
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for i := range snapshot.Table {
		standing := snapshot.Table[i].ToStanding(snapshot.CompetitionID, seasonID)
		if _, err := tx.Exec(ctx, query,
			standing.CompetitionID, standing.SeasonID, standing.Position,
			standing.TeamID, standing.PlayedGames, standing.Won, standing.Draw,
			standing.Lost, standing.Points, standing.GoalsFor,
			standing.GoalsAgainst, standing.GoalDifference, standing.Form,
		); err != nil {
			return fmt.Errorf("failed to insert standing for team %d: %w", standing.TeamID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit standings: %w", err)
	}

	return nil
}

// ListBySeason returns a season's league table ordered by position
func (r *StandingRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Standing, error) {
	query := `
		SELECT id, competition_id, season_id, position, team_id, played_games,
		       won, draw, lost, points, goals_for, goals_against,
		       goal_difference, form, created_at, updated_at
		FROM standings
		WHERE season_id = $1
		ORDER BY position
	`

	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	defer rows.Close()

	var standings []*models.Standing
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(
			&s.ID, &s.CompetitionID, &s.SeasonID, &s.Position, &s.TeamID,
			&s.PlayedGames, &s.Won, &s.Draw, &s.Lost, &s.Points,
			&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Form,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read standings: %w", err)
	}

	return standings, nil
}
