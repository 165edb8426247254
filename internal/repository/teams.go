package repository

import (
	"context"
	"fmt"

	"footdata/sync/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, name, short_name, tla, crest_url, venue, founded
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			tla = EXCLUDED.tla,
			crest_url = EXCLUDED.crest_url,
			venue = EXCLUDED.venue,
			founded = EXCLUDED.founded,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.Name, team.ShortName, team.Tla,
		team.CrestURL, team.Venue, team.Founded,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// UpsertForCompetition upserts a competition's roster and refreshes the
// membership link table. Teams that left the competition keep their row but
// lose the membership.
func (r *TeamRepository) UpsertForCompetition(ctx context.Context, competitionID int, teams []*models.Team) error {
	for _, team := range teams {
		if err := r.Upsert(ctx, team); err != nil {
			return fmt.Errorf("failed to upsert team %d: %w", team.TeamID, err)
		}
	}

	if err := r.replaceMembership(ctx, competitionID, teams); err != nil {
		return err
	}

	log.Debug().
		Int("competition_id", competitionID).
		Int("count", len(teams)).
		Msg("Competition roster upserted")

	return nil
}

func (r *TeamRepository) replaceMembership(ctx context.Context, competitionID int, teams []*models.Team) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM competition_teams WHERE competition_id = $1`, competitionID); err != nil {
		return fmt.Errorf("failed to clear competition roster: %w", err)
	}

	for _, team := range teams {
		if _, err := tx.Exec(ctx,
			`INSERT INTO competition_teams (competition_id, team_id) VALUES ($1, $2)`,
			competitionID, team.TeamID); err != nil {
			return fmt.Errorf("failed to link team %d to competition %d: %w", team.TeamID, competitionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit roster update: %w", err)
	}

	return nil
}

// GetByTeamID retrieves a team by its provider ID
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID int) (*models.Team, error) {
	query := `
		SELECT id, team_id, name, short_name, tla, crest_url, venue, founded,
		       created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.ID, &team.TeamID, &team.Name, &team.ShortName, &team.Tla,
		&team.CrestURL, &team.Venue, &team.Founded,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: team_id=%d", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// ListByCompetition returns the current roster of a competition
func (r *TeamRepository) ListByCompetition(ctx context.Context, competitionID int) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.team_id, t.name, t.short_name, t.tla, t.crest_url,
		       t.venue, t.founded, t.created_at, t.updated_at
		FROM teams t
		JOIN competition_teams ct ON ct.team_id = t.team_id
		WHERE ct.competition_id = $1
		ORDER BY t.name
	`

	rows, err := r.db.Pool.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(
			&team.ID, &team.TeamID, &team.Name, &team.ShortName, &team.Tla,
			&team.CrestURL, &team.Venue, &team.Founded,
			&team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read teams: %w", err)
	}

	return teams, nil
}
