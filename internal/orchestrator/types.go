package orchestrator

import (
	"context"
	"errors"
	"time"

	"footdata/sync/internal/client"
	"footdata/sync/internal/models"
)

// DefaultRunID is the well-known identifier of the recurring sync workflow.
// Reusing one identifier is what lets the trigger detect an overlapping run.
const DefaultRunID = "football-data-sync"

// ErrRunInProgress is returned when attempting to start a run while one is
// already executing in this process.
var ErrRunInProgress = errors.New("sync run already in progress")

// ErrRunActive is returned by a RunStore when beginning a run whose
// identifier is still marked running.
var ErrRunActive = errors.New("sync run still active")

// Phase is a named stage of the sync workflow. Later phases never start
// before every activity of the phases they depend on has completed.
type Phase string

const (
	PhaseCompetitions       Phase = "competitions"
	PhaseBootstrapStandings Phase = "bootstrap_standings"
	PhaseBootstrapTeams     Phase = "bootstrap_teams"
	PhaseMatches            Phase = "matches"
	PhaseStandingsRefresh   Phase = "standings_refresh"
	PhaseTeamRefresh        Phase = "team_refresh"
)

// Activity names used in logs, metrics and the run store.
const (
	ActivitySyncCompetitions = "sync_competitions"
	ActivitySyncTeams        = "sync_competition_teams"
	ActivitySyncMatches      = "sync_competition_matches"
	ActivitySyncStandings    = "sync_competition_standings"
)

// RunStatus is the lifecycle state of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of the full sync workflow
type Run struct {
	RunID     string
	Status    RunStatus
	StartedAt time.Time
	EndedAt   *time.Time
	Error     string

	// The plan is fixed once per run so a resumed run batches the exact
	// same competition sets as the original execution.
	PlanRecorded bool
	TrackedIDs   []int
	SetupIDs     []int
}

// ActivityResult is the recorded outcome of one activity execution.
// Exactly one result exists per (run, phase, competition) tuple; retries and
// replays are invisible to the phase logic.
type ActivityResult struct {
	CompetitionID int `json:"competition_id"`

	// HasNewlyFinishedMatches is set by the match sync activity when at
	// least one match transitioned to a finished state during the call.
	HasNewlyFinishedMatches bool `json:"has_newly_finished_matches,omitempty"`

	// NewSeasonDetected is set by the standings sync activity when the call
	// created a season record that did not previously exist.
	NewSeasonDetected bool `json:"new_season_detected,omitempty"`
}

// ActivityFunc executes one unit of work for one competition
type ActivityFunc func(ctx context.Context, competitionID int) (ActivityResult, error)

// RunStore persists runs and their activity results. It is the workflow's
// replay cursor: on resume, phase decisions are reconstructed from the
// stored plan and recorded results, never from live external state.
type RunStore interface {
	// Active returns the run with the given ID if it is still running,
	// or nil if no such run exists.
	Active(ctx context.Context, runID string) (*Run, error)

	// Begin creates a fresh run, clearing any results recorded by a prior
	// terminal run with the same ID. Returns ErrRunActive if the run is
	// still marked running.
	Begin(ctx context.Context, runID string, startedAt time.Time) (*Run, error)

	// SavePlan records the tracked and setup competition sets for the run.
	SavePlan(ctx context.Context, runID string, trackedIDs, setupIDs []int) error

	// Finish marks the run completed, or failed when runErr is non-nil.
	Finish(ctx context.Context, runID string, runErr error) error

	// Record stores an activity result. Recording the same tuple twice is a
	// no-op; the first result wins.
	Record(ctx context.Context, runID string, phase Phase, competitionID int, res ActivityResult) error

	// Recorded returns the stored result for the tuple, if any.
	Recorded(ctx context.Context, runID string, phase Phase, competitionID int) (ActivityResult, bool, error)
}

// Provider is the external football data client consumed by activities
type Provider interface {
	FetchCompetitions(ctx context.Context) ([]models.CompetitionInput, error)
	FetchTeams(ctx context.Context, competitionID int) ([]models.TeamInput, error)
	FetchMatches(ctx context.Context, competitionID int, opts *client.MatchOptions) ([]models.MatchInput, error)
	FetchStandings(ctx context.Context, competitionID int) (*models.StandingsSnapshot, error)
}

// Storage is the persistence layer consumed by activities. All writes are
// idempotent upserts scoped to one competition.
type Storage interface {
	UpsertCompetitions(ctx context.Context, comps []*models.Competition) error
	CompetitionsWithoutCurrentSeason(ctx context.Context, trackedIDs []int) ([]int, error)
	UpsertTeams(ctx context.Context, competitionID int, teams []*models.Team) error
	UpsertMatches(ctx context.Context, competitionID int, matches []*models.Match) (newlyFinished int, err error)
	UpsertStandings(ctx context.Context, snapshot *models.StandingsSnapshot) (newSeason bool, err error)
}
