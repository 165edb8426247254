package repository

import (
	"testing"
	"time"

	"footdata/sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatch(matchID int, status string) *models.Match {
	return &models.Match{
		MatchID:       matchID,
		CompetitionID: 2021,
		UtcDate:       time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC),
		Status:        status,
		HomeTeamID:    64,
		AwayTeamID:    65,
	}
}

func TestMatchRepository_NewlyFinishedCounting(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// First sync: one scheduled, one already finished at the provider.
	n, err := db.Matches.UpsertAll(ctx, 2021, []*models.Match{
		testMatch(1, models.MatchStatusScheduled),
		testMatch(2, models.MatchStatusFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "A match arriving already finished counts once")

	// Second sync with identical data: nothing newly finished.
	n, err = db.Matches.UpsertAll(ctx, 2021, []*models.Match{
		testMatch(1, models.MatchStatusScheduled),
		testMatch(2, models.MatchStatusFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n, "Re-syncing unchanged data must not count again")

	// Third sync: the scheduled match finishes, as AWARDED.
	n, err = db.Matches.UpsertAll(ctx, 2021, []*models.Match{
		testMatch(1, models.MatchStatusAwarded),
		testMatch(2, models.MatchStatusFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "AWARDED counts as a finish")
}

func TestMatchRepository_UpsertUpdatesScore(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := testMatch(10, models.MatchStatusInPlay)
	_, err := db.Matches.UpsertAll(ctx, 2021, []*models.Match{match})
	require.NoError(t, err)

	finished := testMatch(10, models.MatchStatusFinished)
	finished.HomeScore.Int32, finished.HomeScore.Valid = 2, true
	finished.AwayScore.Int32, finished.AwayScore.Valid = 1, true
	finished.Winner.String, finished.Winner.Valid = "HOME_TEAM", true

	n, err := db.Matches.UpsertAll(ctx, 2021, []*models.Match{finished})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := db.Matches.ListByCompetition(ctx, 2021)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchStatusFinished, matches[0].Status)
	assert.Equal(t, int32(2), matches[0].HomeScore.Int32)
	assert.Equal(t, "HOME_TEAM", matches[0].Winner.String)
}
