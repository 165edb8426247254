package orchestrator

import (
	"context"
	"fmt"

	"footdata/sync/internal/models"

	"github.com/rs/zerolog/log"
)

// Activities are the workflow's units of work. Each performs exactly one
// provider fetch followed by one idempotent persistence operation, so a
// retried activity leaves the store in the same state as a single execution.
type Activities struct {
	provider Provider
	storage  Storage
}

// NewActivities wires activity executors to their collaborators
func NewActivities(provider Provider, storage Storage) *Activities {
	return &Activities{provider: provider, storage: storage}
}

// SyncCompetitions fetches the full competition list and upserts it.
// Season records are deliberately not touched here: a competition's season is
// only ever bootstrapped by the standings sync, which is what the workflow's
// setup detection relies on.
func (a *Activities) SyncCompetitions(ctx context.Context, _ int) (ActivityResult, error) {
	inputs, err := a.provider.FetchCompetitions(ctx)
	if err != nil {
		return ActivityResult{}, err
	}

	comps := make([]*models.Competition, 0, len(inputs))
	for i := range inputs {
		comps = append(comps, inputs[i].ToCompetition())
	}

	if err := a.storage.UpsertCompetitions(ctx, comps); err != nil {
		return ActivityResult{}, fmt.Errorf("failed to upsert competitions: %w", err)
	}

	log.Info().Int("count", len(comps)).Msg("Competition list synced")
	return ActivityResult{}, nil
}

// CompetitionsWithoutSeason returns the tracked competitions that have no
// current season record and therefore need first-time bootstrap. This is a
// persistence read, not a provider call.
func (a *Activities) CompetitionsWithoutSeason(ctx context.Context, trackedIDs []int) ([]int, error) {
	ids, err := a.storage.CompetitionsWithoutCurrentSeason(ctx, trackedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitions without season: %w", err)
	}
	return ids, nil
}

// SyncTeams fetches and upserts the team roster for one competition
func (a *Activities) SyncTeams(ctx context.Context, competitionID int) (ActivityResult, error) {
	inputs, err := a.provider.FetchTeams(ctx, competitionID)
	if err != nil {
		return ActivityResult{}, err
	}

	teams := make([]*models.Team, 0, len(inputs))
	for i := range inputs {
		teams = append(teams, inputs[i].ToTeam())
	}

	if err := a.storage.UpsertTeams(ctx, competitionID, teams); err != nil {
		return ActivityResult{}, fmt.Errorf("failed to upsert teams for competition %d: %w", competitionID, err)
	}

	log.Info().
		Int("competition_id", competitionID).
		Int("count", len(teams)).
		Msg("Teams synced")

	return ActivityResult{CompetitionID: competitionID}, nil
}

// SyncMatches fetches and upserts the matches of one competition's current
// season. HasNewlyFinishedMatches is set when at least one match reached a
// finished state during this call, which is what drives the conditional
// standings refresh.
func (a *Activities) SyncMatches(ctx context.Context, competitionID int) (ActivityResult, error) {
	inputs, err := a.provider.FetchMatches(ctx, competitionID, nil)
	if err != nil {
		return ActivityResult{}, err
	}

	matches := make([]*models.Match, 0, len(inputs))
	for i := range inputs {
		matches = append(matches, inputs[i].ToMatch(competitionID))
	}

	newlyFinished, err := a.storage.UpsertMatches(ctx, competitionID, matches)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("failed to upsert matches for competition %d: %w", competitionID, err)
	}

	log.Info().
		Int("competition_id", competitionID).
		Int("count", len(matches)).
		Int("newly_finished", newlyFinished).
		Msg("Matches synced")

	return ActivityResult{
		CompetitionID:           competitionID,
		HasNewlyFinishedMatches: newlyFinished > 0,
	}, nil
}

// SyncStandings fetches and upserts the league table for one competition.
// NewSeasonDetected is set when this call created the season record, either
// on first-time bootstrap or on a season rollover.
func (a *Activities) SyncStandings(ctx context.Context, competitionID int) (ActivityResult, error) {
	snapshot, err := a.provider.FetchStandings(ctx, competitionID)
	if err != nil {
		return ActivityResult{}, err
	}

	newSeason, err := a.storage.UpsertStandings(ctx, snapshot)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("failed to upsert standings for competition %d: %w", competitionID, err)
	}

	log.Info().
		Int("competition_id", competitionID).
		Int("rows", len(snapshot.Table)).
		Bool("new_season", newSeason).
		Msg("Standings synced")

	return ActivityResult{
		CompetitionID:     competitionID,
		NewSeasonDetected: newSeason,
	}, nil
}
