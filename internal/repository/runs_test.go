package repository

import (
	"errors"
	"testing"
	"time"

	"footdata/sync/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_Lifecycle(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	active, err := db.Runs.Active(ctx, orchestrator.DefaultRunID)
	require.NoError(t, err)
	assert.Nil(t, active)

	startedAt := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	run, err := db.Runs.Begin(ctx, orchestrator.DefaultRunID, startedAt)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.RunStatusRunning, run.Status)

	// A second begin while running is rejected.
	_, err = db.Runs.Begin(ctx, orchestrator.DefaultRunID, time.Now())
	assert.ErrorIs(t, err, orchestrator.ErrRunActive)

	// The persisted run keeps its start time for the resume path.
	active, err = db.Runs.Active(ctx, orchestrator.DefaultRunID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.StartedAt.Equal(startedAt))
	assert.False(t, active.PlanRecorded)

	require.NoError(t, db.Runs.SavePlan(ctx, orchestrator.DefaultRunID, []int{2021, 2014}, []int{2014}))

	active, err = db.Runs.Active(ctx, orchestrator.DefaultRunID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.PlanRecorded)
	assert.Equal(t, []int{2021, 2014}, active.TrackedIDs)
	assert.Equal(t, []int{2014}, active.SetupIDs)

	require.NoError(t, db.Runs.Finish(ctx, orchestrator.DefaultRunID, nil))

	active, err = db.Runs.Active(ctx, orchestrator.DefaultRunID)
	require.NoError(t, err)
	assert.Nil(t, active, "A finished run is no longer active")

	// A fresh begin over the terminal run succeeds.
	_, err = db.Runs.Begin(ctx, orchestrator.DefaultRunID, time.Now())
	require.NoError(t, err)
}

func TestRunRepository_RecordFirstWins(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Runs.Begin(ctx, orchestrator.DefaultRunID, time.Now())
	require.NoError(t, err)

	first := orchestrator.ActivityResult{CompetitionID: 2021, HasNewlyFinishedMatches: true}
	second := orchestrator.ActivityResult{CompetitionID: 2021}

	require.NoError(t, db.Runs.Record(ctx, orchestrator.DefaultRunID, orchestrator.PhaseMatches, 2021, first))
	require.NoError(t, db.Runs.Record(ctx, orchestrator.DefaultRunID, orchestrator.PhaseMatches, 2021, second))

	got, found, err := db.Runs.Recorded(ctx, orchestrator.DefaultRunID, orchestrator.PhaseMatches, 2021)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.HasNewlyFinishedMatches, "The first recorded result wins")

	_, found, err = db.Runs.Recorded(ctx, orchestrator.DefaultRunID, orchestrator.PhaseStandingsRefresh, 2021)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunRepository_FreshBeginClearsResults(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Runs.Begin(ctx, orchestrator.DefaultRunID, time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Runs.Record(ctx, orchestrator.DefaultRunID, orchestrator.PhaseMatches, 2021,
		orchestrator.ActivityResult{CompetitionID: 2021}))
	require.NoError(t, db.Runs.Finish(ctx, orchestrator.DefaultRunID, errors.New("interrupted")))

	_, err = db.Runs.Begin(ctx, orchestrator.DefaultRunID, time.Now())
	require.NoError(t, err)

	_, found, err := db.Runs.Recorded(ctx, orchestrator.DefaultRunID, orchestrator.PhaseMatches, 2021)
	require.NoError(t, err)
	assert.False(t, found, "Results of the prior run must not leak into the new run")
}
