// Command manualfetch runs one sync cycle from the command line. It uses the
// same workflow and run store as the worker, so a manual run is skipped when
// the worker already has the run in flight, and an interrupted run is
// resumed rather than restarted.
package main

import (
	"context"
	"errors"
	"strconv"

	"footdata/sync/internal/client"
	"footdata/sync/internal/config"
	"footdata/sync/internal/orchestrator"
	"footdata/sync/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Validate database connectivity before touching the provider
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	fdClient := client.NewClient(
		cfg.FootballDataBaseURL,
		cfg.FootballDataAPIKey,
		cfg.FootballDataTimeout,
	)

	workflow := orchestrator.NewWorkflow(cfg, fdClient, db, db.Runs)

	log.Info().Ints("competitions", cfg.SupportedCompetitionIDs).Msg("Starting manual sync")

	if err := workflow.Run(ctx); err != nil {
		if errors.Is(err, orchestrator.ErrRunActive) {
			log.Warn().Msg("A sync run is already active, nothing to do")
			return
		}
		log.Fatal().Err(err).Msg("Manual sync failed")
	}

	log.Info().Msg("Manual sync complete")
}
