package repository

import (
	"context"
	"fmt"

	"footdata/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

// UpsertAll upserts a competition's matches and returns how many of them
// transitioned into a finished state during this call. A match already
// finished on record does not count again, so re-running the sync with the
// same data reports zero.
func (r *MatchRepository) UpsertAll(ctx context.Context, competitionID int, matches []*models.Match) (int, error) {
	existing, err := r.finishedByMatchID(ctx, competitionID)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO matches (
			match_id, competition_id, season_id, utc_date, status, matchday,
			stage, home_team_id, away_team_id, home_score, away_score, winner
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_id) DO UPDATE SET
			season_id = EXCLUDED.season_id,
			utc_date = EXCLUDED.utc_date,
			status = EXCLUDED.status,
			matchday = EXCLUDED.matchday,
			stage = EXCLUDED.stage,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			winner = EXCLUDED.winner,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	newlyFinished := 0
	for _, match := range matches {
		err := r.db.Pool.QueryRow(
			ctx, query,
			match.MatchID, match.CompetitionID, match.SeasonID, match.UtcDate,
			match.Status, match.Matchday, match.Stage,
			match.HomeTeamID, match.AwayTeamID,
			match.HomeScore, match.AwayScore, match.Winner,
		).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

		if err != nil {
			return 0, fmt.Errorf("failed to upsert match %d: %w", match.MatchID, err)
		}

		if models.IsFinishedStatus(match.Status) && !existing[match.MatchID] {
			newlyFinished++
		}
	}

	log.Debug().
		Int("competition_id", competitionID).
		Int("count", len(matches)).
		Int("newly_finished", newlyFinished).
		Msg("Matches upserted")

	return newlyFinished, nil
}

// finishedByMatchID returns the set of matches already finished on record
// for a competition
func (r *MatchRepository) finishedByMatchID(ctx context.Context, competitionID int) (map[int]bool, error) {
	query := `
		SELECT match_id
		FROM matches
		WHERE competition_id = $1 AND status IN ($2, $3)
	`

	rows, err := r.db.Pool.Query(ctx, query, competitionID,
		models.MatchStatusFinished, models.MatchStatusAwarded)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished matches: %w", err)
	}
	defer rows.Close()

	finished := make(map[int]bool)
	for rows.Next() {
		var matchID int
		if err := rows.Scan(&matchID); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		finished[matchID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read finished matches: %w", err)
	}

	return finished, nil
}

// ListByCompetition returns a competition's matches ordered by kickoff time
func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID int) ([]*models.Match, error) {
	query := `
		SELECT id, match_id, competition_id, season_id, utc_date, status,
		       matchday, stage, home_team_id, away_team_id, home_score,
		       away_score, winner, created_at, updated_at
		FROM matches
		WHERE competition_id = $1
		ORDER BY utc_date
	`

	rows, err := r.db.Pool.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var match models.Match
		if err := rows.Scan(
			&match.ID, &match.MatchID, &match.CompetitionID, &match.SeasonID,
			&match.UtcDate, &match.Status, &match.Matchday, &match.Stage,
			&match.HomeTeamID, &match.AwayTeamID, &match.HomeScore,
			&match.AwayScore, &match.Winner, &match.CreatedAt, &match.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}

	return matches, nil
}
