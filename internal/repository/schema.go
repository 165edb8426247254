package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS competitions (
		id SERIAL PRIMARY KEY,
		competition_id INT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		code TEXT,
		type TEXT,
		area_name TEXT,
		emblem_url TEXT,
		current_season_id INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS seasons (
		id SERIAL PRIMARY KEY,
		season_id INT NOT NULL UNIQUE,
		competition_id INT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		current_matchday INT,
		winner_team_id INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seasons_competition ON seasons(competition_id)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id SERIAL PRIMARY KEY,
		team_id INT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		short_name TEXT,
		tla TEXT,
		crest_url TEXT,
		venue TEXT,
		founded INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS competition_teams (
		competition_id INT NOT NULL,
		team_id INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (competition_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id SERIAL PRIMARY KEY,
		match_id INT NOT NULL UNIQUE,
		competition_id INT NOT NULL,
		season_id INT,
		utc_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		matchday INT,
		stage TEXT,
		home_team_id INT NOT NULL,
		away_team_id INT NOT NULL,
		home_score INT,
		away_score INT,
		winner TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_competition ON matches(competition_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,
	`CREATE TABLE IF NOT EXISTS standings (
		id SERIAL PRIMARY KEY,
		competition_id INT NOT NULL,
		season_id INT NOT NULL,
		position INT NOT NULL,
		team_id INT NOT NULL,
		played_games INT NOT NULL,
		won INT NOT NULL,
		draw INT NOT NULL,
		lost INT NOT NULL,
		points INT NOT NULL,
		goals_for INT NOT NULL,
		goals_against INT NOT NULL,
		goal_difference INT NOT NULL,
		form TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (season_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		run_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		error TEXT NOT NULL DEFAULT '',
		plan_recorded BOOLEAN NOT NULL DEFAULT FALSE,
		tracked_ids JSONB NOT NULL DEFAULT '[]',
		setup_ids JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sync_activity_results (
		run_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		competition_id INT NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, phase, competition_id)
	)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
// Statements are idempotent so this is safe to run on every startup.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
