package repository

import (
	"context"
	"fmt"

	"footdata/sync/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// CompetitionRepository handles competition and season database operations
type CompetitionRepository struct {
	db *Database
}

// Upsert inserts or updates a competition. The current season pointer is
// never written here; it is only set by SetCurrentSeason during a standings
// sync, once the season row actually exists.
func (r *CompetitionRepository) Upsert(ctx context.Context, comp *models.Competition) error {
	query := `
		INSERT INTO competitions (
			competition_id, name, code, type, area_name, emblem_url
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (competition_id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			type = EXCLUDED.type,
			area_name = EXCLUDED.area_name,
			emblem_url = EXCLUDED.emblem_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		comp.CompetitionID, comp.Name, comp.Code, comp.Type,
		comp.AreaName, comp.EmblemURL,
	).Scan(&comp.ID, &comp.CreatedAt, &comp.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert competition: %w", err)
	}

	return nil
}

// UpsertAll upserts a list of competitions
func (r *CompetitionRepository) UpsertAll(ctx context.Context, comps []*models.Competition) error {
	for _, comp := range comps {
		if err := r.Upsert(ctx, comp); err != nil {
			return fmt.Errorf("failed to upsert competition %d: %w", comp.CompetitionID, err)
		}
	}

	log.Debug().Int("count", len(comps)).Msg("Competitions upserted")
	return nil
}

// GetByCompetitionID retrieves a competition by its provider ID
func (r *CompetitionRepository) GetByCompetitionID(ctx context.Context, competitionID int) (*models.Competition, error) {
	query := `
		SELECT id, competition_id, name, code, type, area_name, emblem_url,
		       current_season_id, created_at, updated_at
		FROM competitions
		WHERE competition_id = $1
	`

	var comp models.Competition
	err := r.db.Pool.QueryRow(ctx, query, competitionID).Scan(
		&comp.ID, &comp.CompetitionID, &comp.Name, &comp.Code, &comp.Type,
		&comp.AreaName, &comp.EmblemURL, &comp.CurrentSeasonID,
		&comp.CreatedAt, &comp.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("competition not found: competition_id=%d", competitionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return &comp, nil
}

// ListWithoutCurrentSeason returns, in input order, the subset of the given
// competition IDs that have no current season on record. A competition the
// provider list has never included also qualifies.
func (r *CompetitionRepository) ListWithoutCurrentSeason(ctx context.Context, competitionIDs []int) ([]int, error) {
	if len(competitionIDs) == 0 {
		return nil, nil
	}

	ids := make([]int32, len(competitionIDs))
	for i, id := range competitionIDs {
		ids[i] = int32(id)
	}

	query := `
		SELECT t.competition_id
		FROM unnest($1::int[]) AS t(competition_id)
		LEFT JOIN competitions c ON c.competition_id = t.competition_id
		WHERE c.competition_id IS NULL OR c.current_season_id IS NULL
		ORDER BY array_position($1::int[], t.competition_id)
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions without season: %w", err)
	}
	defer rows.Close()

	var result []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan competition id: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read competition ids: %w", err)
	}

	return result, nil
}

// UpsertSeason inserts or updates a season and reports whether the row was
// created by this call
func (r *CompetitionRepository) UpsertSeason(ctx context.Context, season *models.Season) (bool, error) {
	query := `
		INSERT INTO seasons (
			season_id, competition_id, start_date, end_date,
			current_matchday, winner_team_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season_id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			current_matchday = EXCLUDED.current_matchday,
			winner_team_id = EXCLUDED.winner_team_id,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted, created_at, updated_at
	`

	var created bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		season.SeasonID, season.CompetitionID, season.StartDate, season.EndDate,
		season.CurrentMatchday, season.WinnerTeamID,
	).Scan(&season.ID, &created, &season.CreatedAt, &season.UpdatedAt)

	if err != nil {
		return false, fmt.Errorf("failed to upsert season: %w", err)
	}

	if created {
		log.Info().
			Int("season_id", season.SeasonID).
			Int("competition_id", season.CompetitionID).
			Msg("Season created")
	}

	return created, nil
}

// SetCurrentSeason points a competition at its current season
func (r *CompetitionRepository) SetCurrentSeason(ctx context.Context, competitionID, seasonID int) error {
	query := `
		UPDATE competitions
		SET current_season_id = $2, updated_at = NOW()
		WHERE competition_id = $1
	`

	if _, err := r.db.Pool.Exec(ctx, query, competitionID, seasonID); err != nil {
		return fmt.Errorf("failed to set current season: %w", err)
	}

	return nil
}
