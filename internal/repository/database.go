package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"footdata/sync/internal/models"
	"footdata/sync/internal/orchestrator"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Competitions *CompetitionRepository
	Teams        *TeamRepository
	Matches      *MatchRepository
	Standings    *StandingRepository
	Runs         *RunRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}

	db.Competitions = &CompetitionRepository{db: db}
	db.Teams = &TeamRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	db.Standings = &StandingRepository{db: db}
	db.Runs = &RunRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// The methods below satisfy the orchestrator's storage contract by
// dispatching to the individual repositories.

// UpsertCompetitions saves the full competition list
func (db *Database) UpsertCompetitions(ctx context.Context, comps []*models.Competition) error {
	return db.Competitions.UpsertAll(ctx, comps)
}

// CompetitionsWithoutCurrentSeason returns tracked competitions that have no
// current season on record
func (db *Database) CompetitionsWithoutCurrentSeason(ctx context.Context, trackedIDs []int) ([]int, error) {
	return db.Competitions.ListWithoutCurrentSeason(ctx, trackedIDs)
}

// UpsertTeams saves a competition's team roster
func (db *Database) UpsertTeams(ctx context.Context, competitionID int, teams []*models.Team) error {
	return db.Teams.UpsertForCompetition(ctx, competitionID, teams)
}

// UpsertMatches saves a competition's matches and reports how many reached a
// finished state in this call
func (db *Database) UpsertMatches(ctx context.Context, competitionID int, matches []*models.Match) (int, error) {
	return db.Matches.UpsertAll(ctx, competitionID, matches)
}

// UpsertStandings replaces a competition season's league table and reports
// whether the season record was created by this call
func (db *Database) UpsertStandings(ctx context.Context, snapshot *models.StandingsSnapshot) (bool, error) {
	return db.Standings.Replace(ctx, snapshot)
}

var _ orchestrator.Storage = (*Database)(nil)
