package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"footdata/sync/internal/client"
	"footdata/sync/internal/config"
	"footdata/sync/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Workflow drives one full sync run through its phases:
//
//	competitions -> bootstrap (standings, teams) -> matches ->
//	standings refresh -> team refresh
//
// Every activity outcome is recorded in the RunStore before the next phase
// consumes it, so a run interrupted at any point can be resumed and will
// replay recorded results instead of re-executing their activities.
type Workflow struct {
	runID      string
	activities *Activities
	store      RunStore
	batch      *BatchScheduler

	trackedIDs         []int
	fullRefreshHourUTC int
	maxAttempts        int
	retryInterval      time.Duration

	// now and sleep are swapped out in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	running atomic.Bool
}

// NewWorkflow creates a workflow from config and its collaborators
func NewWorkflow(cfg *config.Config, provider Provider, storage Storage, store RunStore) *Workflow {
	metrics.CompetitionsTracked.Set(float64(len(cfg.SupportedCompetitionIDs)))

	return &Workflow{
		runID:              DefaultRunID,
		activities:         NewActivities(provider, storage),
		store:              store,
		batch:              NewBatchScheduler(cfg.SyncBatchSize, cfg.InterBatchWait),
		trackedIDs:         cfg.SupportedCompetitionIDs,
		fullRefreshHourUTC: cfg.FullRefreshHourUTC,
		maxAttempts:        cfg.ActivityMaxAttempts,
		retryInterval:      cfg.ActivityRetryInterval,
		now:                time.Now,
		sleep:              sleepContext,
	}
}

// Run executes one sync run, resuming an interrupted run with the same ID if
// one exists. It returns ErrRunInProgress when a run is already executing in
// this process, and ErrRunActive when another process holds the run.
func (w *Workflow) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer w.running.Store(false)

	start := w.now()

	run, resumed, err := w.startOrResume(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", run.RunID).
		Bool("resumed", resumed).
		Ints("tracked", w.trackedIDs).
		Msg("Sync run starting")

	runErr := w.execute(ctx, run)

	if err := w.store.Finish(ctx, run.RunID, runErr); err != nil {
		log.Error().Err(err).Str("run_id", run.RunID).Msg("Failed to finalize sync run")
	}

	elapsed := w.now().Sub(start)
	metrics.SyncRunDuration.Observe(elapsed.Seconds())

	if runErr != nil {
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(runErr).
			Str("run_id", run.RunID).
			Dur("elapsed", elapsed).
			Msg("Sync run failed")
		return runErr
	}

	metrics.SyncRunsTotal.WithLabelValues("completed").Inc()
	log.Info().
		Str("run_id", run.RunID).
		Dur("elapsed", elapsed).
		Msg("Sync run completed")
	return nil
}

// startOrResume picks up an interrupted run if one is still marked running,
// otherwise begins a fresh run stamped with the current time. The stamp is
// persisted so a resume makes the same full-refresh decision as the original
// execution.
func (w *Workflow) startOrResume(ctx context.Context) (*Run, bool, error) {
	run, err := w.store.Active(ctx, w.runID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query active run: %w", err)
	}
	if run != nil {
		return run, true, nil
	}

	run, err = w.store.Begin(ctx, w.runID, w.now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin run: %w", err)
	}
	return run, false, nil
}

func (w *Workflow) execute(ctx context.Context, run *Run) error {
	// Phase 0: refresh the competition list. A single activity, not batched.
	if _, err := w.activity(run, PhaseCompetitions, ActivitySyncCompetitions, w.activities.SyncCompetitions)(ctx, 0); err != nil {
		return err
	}

	if err := w.ensurePlan(ctx, run); err != nil {
		return err
	}

	// Bootstrap: competitions without a current season get standings first,
	// so the season exists before teams and matches reference it.
	if len(run.SetupIDs) > 0 {
		log.Info().
			Str("run_id", run.RunID).
			Ints("competition_ids", run.SetupIDs).
			Msg("Bootstrapping first-time competitions")

		if err := w.batch.Wait(ctx); err != nil {
			return err
		}
		if _, err := w.batch.ExecuteInBatches(ctx, run.SetupIDs,
			w.activity(run, PhaseBootstrapStandings, ActivitySyncStandings, w.activities.SyncStandings)); err != nil {
			return err
		}

		if err := w.batch.Wait(ctx); err != nil {
			return err
		}
		if _, err := w.batch.ExecuteInBatches(ctx, run.SetupIDs,
			w.activity(run, PhaseBootstrapTeams, ActivitySyncTeams, w.activities.SyncTeams)); err != nil {
			return err
		}
	}

	// Phase 1: match sync for every tracked competition.
	if err := w.batch.Wait(ctx); err != nil {
		return err
	}
	matchResults, err := w.batch.ExecuteInBatches(ctx, run.TrackedIDs,
		w.activity(run, PhaseMatches, ActivitySyncMatches, w.activities.SyncMatches))
	if err != nil {
		return err
	}

	// Phase 2: standings refresh. Freshly bootstrapped competitions already
	// have standings from this run and are excluded from the candidates.
	standingsIDs := w.standingsCandidates(run, matchResults)

	var standingsResults []ActivityResult
	if len(standingsIDs) > 0 {
		if err := w.batch.Wait(ctx); err != nil {
			return err
		}
		standingsResults, err = w.batch.ExecuteInBatches(ctx, standingsIDs,
			w.activity(run, PhaseStandingsRefresh, ActivitySyncStandings, w.activities.SyncStandings))
		if err != nil {
			return err
		}
	}

	// Phase 3: competitions whose standings revealed a season rollover get
	// their team rosters refreshed for the new season.
	var teamIDs []int
	for _, res := range standingsResults {
		if res.NewSeasonDetected {
			teamIDs = append(teamIDs, res.CompetitionID)
		}
	}

	if len(teamIDs) > 0 {
		log.Info().
			Str("run_id", run.RunID).
			Ints("competition_ids", teamIDs).
			Msg("New seasons detected, refreshing team rosters")

		if err := w.batch.Wait(ctx); err != nil {
			return err
		}
		if _, err := w.batch.ExecuteInBatches(ctx, teamIDs,
			w.activity(run, PhaseTeamRefresh, ActivitySyncTeams, w.activities.SyncTeams)); err != nil {
			return err
		}
	}

	return nil
}

// ensurePlan fixes the run's competition sets exactly once. A resumed run
// reuses the stored plan rather than re-deriving it from the database, which
// may have changed since the run began.
func (w *Workflow) ensurePlan(ctx context.Context, run *Run) error {
	if run.PlanRecorded {
		return nil
	}

	setupIDs, err := w.activities.CompetitionsWithoutSeason(ctx, w.trackedIDs)
	if err != nil {
		return err
	}

	if err := w.store.SavePlan(ctx, run.RunID, w.trackedIDs, setupIDs); err != nil {
		return fmt.Errorf("failed to save run plan: %w", err)
	}

	run.TrackedIDs = append([]int(nil), w.trackedIDs...)
	run.SetupIDs = append([]int(nil), setupIDs...)
	run.PlanRecorded = true
	return nil
}

// standingsCandidates selects the competitions whose standings are refreshed
// this run. At the daily full-refresh hour every tracked competition
// qualifies; otherwise only those whose match sync saw newly finished
// matches. Both sets exclude competitions bootstrapped earlier in this run
// and keep the tracked ordering so batches are deterministic.
func (w *Workflow) standingsCandidates(run *Run, matchResults []ActivityResult) []int {
	bootstrapped := make(map[int]bool, len(run.SetupIDs))
	for _, id := range run.SetupIDs {
		bootstrapped[id] = true
	}

	fullRefresh := run.StartedAt.UTC().Hour() == w.fullRefreshHourUTC

	finished := make(map[int]bool, len(matchResults))
	for _, res := range matchResults {
		if res.HasNewlyFinishedMatches {
			finished[res.CompetitionID] = true
		}
	}

	var candidates []int
	for _, id := range run.TrackedIDs {
		if bootstrapped[id] {
			continue
		}
		if fullRefresh || finished[id] {
			candidates = append(candidates, id)
		}
	}

	if fullRefresh {
		log.Info().
			Str("run_id", run.RunID).
			Int("hour_utc", w.fullRefreshHourUTC).
			Ints("competition_ids", candidates).
			Msg("Full standings refresh hour")
	}
	return candidates
}

// activity wraps an executor with replay and retry. A result already
// recorded for the (run, phase, competition) tuple is returned as-is;
// otherwise the executor runs under the retry policy and its result is
// recorded before being returned.
func (w *Workflow) activity(run *Run, phase Phase, name string, fn ActivityFunc) ActivityFunc {
	return func(ctx context.Context, competitionID int) (ActivityResult, error) {
		res, ok, err := w.store.Recorded(ctx, run.RunID, phase, competitionID)
		if err != nil {
			return ActivityResult{}, fmt.Errorf("failed to read recorded result: %w", err)
		}
		if ok {
			metrics.ActivitiesTotal.WithLabelValues(name, "replayed").Inc()
			log.Debug().
				Str("run_id", run.RunID).
				Str("phase", string(phase)).
				Str("activity", name).
				Int("competition_id", competitionID).
				Msg("Replaying recorded activity result")
			return res, nil
		}

		start := w.now()
		res, err = w.withRetry(ctx, name, competitionID, fn)
		if err != nil {
			metrics.ActivitiesTotal.WithLabelValues(name, "failure").Inc()
			return ActivityResult{}, err
		}
		metrics.ActivityDuration.WithLabelValues(name).Observe(w.now().Sub(start).Seconds())

		if err := w.store.Record(ctx, run.RunID, phase, competitionID, res); err != nil {
			return ActivityResult{}, fmt.Errorf("failed to record activity result: %w", err)
		}
		metrics.ActivitiesTotal.WithLabelValues(name, "success").Inc()
		return res, nil
	}
}

// withRetry executes fn up to maxAttempts times with a fixed interval
// between attempts. Permanent provider errors fail immediately; everything
// else is worth another attempt.
func (w *Workflow) withRetry(ctx context.Context, name string, competitionID int, fn ActivityFunc) (ActivityResult, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		res, err := fn(ctx, competitionID)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if client.IsPermanent(err) {
			return ActivityResult{}, fmt.Errorf("activity %s failed for competition %d: %w", name, competitionID, err)
		}

		if attempt < w.maxAttempts {
			metrics.ActivityRetriesTotal.WithLabelValues(name).Inc()
			log.Warn().Err(err).
				Str("activity", name).
				Int("competition_id", competitionID).
				Int("attempt", attempt).
				Dur("retry_in", w.retryInterval).
				Msg("Activity failed, retrying")
			if serr := w.sleep(ctx, w.retryInterval); serr != nil {
				return ActivityResult{}, serr
			}
		}
	}
	return ActivityResult{}, fmt.Errorf("activity %s exhausted %d attempts for competition %d: %w",
		name, w.maxAttempts, competitionID, lastErr)
}
