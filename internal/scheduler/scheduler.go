package scheduler

import (
	"context"
	"errors"
	"fmt"

	"footdata/sync/internal/config"
	"footdata/sync/internal/metrics"
	"footdata/sync/internal/orchestrator"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler triggers sync runs on a cron schedule. Ticks that arrive while a
// run is still executing are skipped, never queued, so at most one run is in
// flight regardless of run duration.
type Scheduler struct {
	cfg      *config.Config
	workflow *orchestrator.Workflow
	cron     *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, workflow *orchestrator.Workflow) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		workflow: workflow,
		cron:     cron.New(),
	}
}

// Start registers the sync cron job and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.SyncCron, func() {
		s.trigger(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.SyncCron).
		Msg("Sync scheduled")

	return nil
}

// Stop stops the scheduler. A run already in flight is not interrupted.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// TriggerNow fires one sync run outside the cron schedule
func (s *Scheduler) TriggerNow(ctx context.Context) {
	s.trigger(ctx)
}

func (s *Scheduler) trigger(ctx context.Context) {
	triggerID := uuid.New().String()

	log.Info().Str("trigger_id", triggerID).Msg("Sync trigger fired")

	err := s.workflow.Run(ctx)
	switch {
	case err == nil:
		metrics.TriggerTicksTotal.WithLabelValues("completed").Inc()
	case errors.Is(err, orchestrator.ErrRunInProgress), errors.Is(err, orchestrator.ErrRunActive):
		metrics.TriggerTicksTotal.WithLabelValues("skipped").Inc()
		log.Info().
			Str("trigger_id", triggerID).
			Msg("Previous sync run still in progress, skipping trigger")
	default:
		metrics.TriggerTicksTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).
			Str("trigger_id", triggerID).
			Msg("Sync run failed")
	}
}
