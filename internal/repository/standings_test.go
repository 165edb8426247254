package repository

import (
	"testing"

	"footdata/sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(seasonID int, table ...models.StandingInput) *models.StandingsSnapshot {
	return &models.StandingsSnapshot{
		CompetitionID: 2021,
		Season: &models.SeasonInput{
			ID:        seasonID,
			StartDate: "2025-08-15",
			EndDate:   "2026-05-24",
		},
		Table: table,
	}
}

func standingRow(position, teamID, points int) models.StandingInput {
	row := models.StandingInput{Position: position, Points: points}
	row.Team.ID = teamID
	return row
}

func TestStandingRepository_Replace(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Competitions.Upsert(ctx, &models.Competition{CompetitionID: 2021, Name: "Premier League"}))

	newSeason, err := db.Standings.Replace(ctx, testSnapshot(1564,
		standingRow(1, 65, 48),
		standingRow(2, 64, 45),
	))
	require.NoError(t, err)
	assert.True(t, newSeason, "First standings sync bootstraps the season")

	// The competition now points at its current season.
	comp, err := db.Competitions.GetByCompetitionID(ctx, 2021)
	require.NoError(t, err)
	require.True(t, comp.CurrentSeasonID.Valid)
	assert.Equal(t, int32(1564), comp.CurrentSeasonID.Int32)

	// A later sync replaces the table wholesale.
	newSeason, err = db.Standings.Replace(ctx, testSnapshot(1564,
		standingRow(1, 64, 49),
		standingRow(2, 65, 48),
	))
	require.NoError(t, err)
	assert.False(t, newSeason, "Same season is not a rollover")

	table, err := db.Standings.ListBySeason(ctx, 1564)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, 64, table[0].TeamID, "Positions reflect the latest snapshot")
	assert.Equal(t, 49, table[0].Points)
}

func TestStandingRepository_SeasonRollover(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Competitions.Upsert(ctx, &models.Competition{CompetitionID: 2021, Name: "Premier League"}))

	_, err := db.Standings.Replace(ctx, testSnapshot(1564, standingRow(1, 65, 48)))
	require.NoError(t, err)

	newSeason, err := db.Standings.Replace(ctx, testSnapshot(1700, standingRow(1, 64, 0)))
	require.NoError(t, err)
	assert.True(t, newSeason, "A new season ID is a rollover")

	comp, err := db.Competitions.GetByCompetitionID(ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, int32(1700), comp.CurrentSeasonID.Int32)

	// Both seasons keep their tables.
	oldTable, err := db.Standings.ListBySeason(ctx, 1564)
	require.NoError(t, err)
	assert.Len(t, oldTable, 1)
}

func TestStandingRepository_MissingSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Standings.Replace(ctx, &models.StandingsSnapshot{CompetitionID: 2021})
	assert.Error(t, err, "A snapshot without a season cannot be persisted")
}
