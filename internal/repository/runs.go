package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"footdata/sync/internal/orchestrator"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RunRepository persists sync runs and their activity results. It is the
// durable run store: a worker restarted mid-run finds the run still marked
// running, resumes it, and replays the recorded results instead of repeating
// the work.
type RunRepository struct {
	db *Database
}

var _ orchestrator.RunStore = (*RunRepository)(nil)

// Active returns the run with the given ID if it is still running
func (r *RunRepository) Active(ctx context.Context, runID string) (*orchestrator.Run, error) {
	query := `
		SELECT run_id, status, started_at, ended_at, error, plan_recorded,
		       tracked_ids, setup_ids
		FROM sync_runs
		WHERE run_id = $1 AND status = $2
	`

	run, err := r.scanRun(r.db.Pool.QueryRow(ctx, query, runID, orchestrator.RunStatusRunning))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active run: %w", err)
	}

	return run, nil
}

// Begin creates a fresh running run, resetting any terminal run with the
// same ID and discarding its recorded results. Returns ErrRunActive when the
// run is still marked running.
func (r *RunRepository) Begin(ctx context.Context, runID string, startedAt time.Time) (*orchestrator.Run, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sync_runs (run_id, status, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE SET
			status = $2,
			started_at = $3,
			ended_at = NULL,
			error = '',
			plan_recorded = FALSE,
			tracked_ids = '[]',
			setup_ids = '[]',
			updated_at = NOW()
		WHERE sync_runs.status <> $2
		RETURNING run_id
	`

	var returned string
	err = tx.QueryRow(ctx, query, runID, orchestrator.RunStatusRunning, startedAt).Scan(&returned)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orchestrator.ErrRunActive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM sync_activity_results WHERE run_id = $1`, runID); err != nil {
		return nil, fmt.Errorf("failed to clear prior run results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	log.Debug().Str("run_id", runID).Time("started_at", startedAt).Msg("Run begun")

	return &orchestrator.Run{
		RunID:     runID,
		Status:    orchestrator.RunStatusRunning,
		StartedAt: startedAt,
	}, nil
}

// SavePlan records the run's fixed competition sets
func (r *RunRepository) SavePlan(ctx context.Context, runID string, trackedIDs, setupIDs []int) error {
	tracked, err := json.Marshal(trackedIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal tracked ids: %w", err)
	}
	setup, err := json.Marshal(setupIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal setup ids: %w", err)
	}

	query := `
		UPDATE sync_runs
		SET tracked_ids = $2, setup_ids = $3, plan_recorded = TRUE, updated_at = NOW()
		WHERE run_id = $1
	`

	if _, err := r.db.Pool.Exec(ctx, query, runID, tracked, setup); err != nil {
		return fmt.Errorf("failed to save run plan: %w", err)
	}

	return nil
}

// Finish marks the run completed, or failed when runErr is non-nil
func (r *RunRepository) Finish(ctx context.Context, runID string, runErr error) error {
	status := orchestrator.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = orchestrator.RunStatusFailed
		errMsg = runErr.Error()
	}

	query := `
		UPDATE sync_runs
		SET status = $2, error = $3, ended_at = NOW(), updated_at = NOW()
		WHERE run_id = $1
	`

	if _, err := r.db.Pool.Exec(ctx, query, runID, status, errMsg); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// Record stores an activity result. The first result for a tuple wins;
// recording again is a no-op.
func (r *RunRepository) Record(ctx context.Context, runID string, phase orchestrator.Phase, competitionID int, res orchestrator.ActivityResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal activity result: %w", err)
	}

	query := `
		INSERT INTO sync_activity_results (run_id, phase, competition_id, result)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, phase, competition_id) DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, query, runID, phase, competitionID, payload); err != nil {
		return fmt.Errorf("failed to record activity result: %w", err)
	}

	return nil
}

// Recorded returns the stored result for the tuple, if any
func (r *RunRepository) Recorded(ctx context.Context, runID string, phase orchestrator.Phase, competitionID int) (orchestrator.ActivityResult, bool, error) {
	query := `
		SELECT result
		FROM sync_activity_results
		WHERE run_id = $1 AND phase = $2 AND competition_id = $3
	`

	var payload []byte
	err := r.db.Pool.QueryRow(ctx, query, runID, phase, competitionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return orchestrator.ActivityResult{}, false, nil
	}
	if err != nil {
		return orchestrator.ActivityResult{}, false, fmt.Errorf("failed to get recorded result: %w", err)
	}

	var res orchestrator.ActivityResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return orchestrator.ActivityResult{}, false, fmt.Errorf("failed to unmarshal activity result: %w", err)
	}

	return res, true, nil
}

func (r *RunRepository) scanRun(row pgx.Row) (*orchestrator.Run, error) {
	var (
		run     orchestrator.Run
		tracked []byte
		setup   []byte
	)

	if err := row.Scan(
		&run.RunID, &run.Status, &run.StartedAt, &run.EndedAt, &run.Error,
		&run.PlanRecorded, &tracked, &setup,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tracked, &run.TrackedIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracked ids: %w", err)
	}
	if err := json.Unmarshal(setup, &run.SetupIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal setup ids: %w", err)
	}

	return &run, nil
}
