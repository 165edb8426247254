package repository

import (
	"testing"
	"time"

	"footdata/sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompetitionRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	comp := &models.Competition{
		CompetitionID: 2021,
		Name:          "Premier League",
	}

	err := db.Competitions.Upsert(ctx, comp)
	require.NoError(t, err, "Should successfully insert competition")

	retrieved, err := db.Competitions.GetByCompetitionID(ctx, 2021)
	require.NoError(t, err, "Should retrieve inserted competition")
	assert.Equal(t, "Premier League", retrieved.Name)
	assert.False(t, retrieved.CurrentSeasonID.Valid, "Upsert must not touch the current season")

	comp.Name = "English Premier League"
	err = db.Competitions.Upsert(ctx, comp)
	require.NoError(t, err, "Should successfully update competition")

	updated, err := db.Competitions.GetByCompetitionID(ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, "English Premier League", updated.Name)
}

func TestCompetitionRepository_ListWithoutCurrentSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Competitions.Upsert(ctx, &models.Competition{CompetitionID: 2021, Name: "Premier League"}))
	require.NoError(t, db.Competitions.Upsert(ctx, &models.Competition{CompetitionID: 2014, Name: "Primera Division"}))

	// Every tracked competition lacks a season initially, in input order.
	ids, err := db.Competitions.ListWithoutCurrentSeason(ctx, []int{2021, 2014})
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2014}, ids)

	// Bootstrapping one competition's season removes it from the list.
	season := &models.Season{
		SeasonID:      1564,
		CompetitionID: 2021,
		StartDate:     time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
	}
	created, err := db.Competitions.UpsertSeason(ctx, season)
	require.NoError(t, err)
	assert.True(t, created, "First upsert should create the season")
	require.NoError(t, db.Competitions.SetCurrentSeason(ctx, 2021, 1564))

	ids, err = db.Competitions.ListWithoutCurrentSeason(ctx, []int{2021, 2014})
	require.NoError(t, err)
	assert.Equal(t, []int{2014}, ids)

	// A competition not synced yet still qualifies.
	ids, err = db.Competitions.ListWithoutCurrentSeason(ctx, []int{2021, 2002, 2014})
	require.NoError(t, err)
	assert.Equal(t, []int{2002, 2014}, ids)
}

func TestCompetitionRepository_UpsertSeasonRollover(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	first := &models.Season{
		SeasonID:      1564,
		CompetitionID: 2021,
		StartDate:     time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
	}

	created, err := db.Competitions.UpsertSeason(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	// Same season again is not a rollover.
	created, err = db.Competitions.UpsertSeason(ctx, first)
	require.NoError(t, err)
	assert.False(t, created, "Re-upserting the same season is not a creation")

	// A new season ID is.
	next := &models.Season{
		SeasonID:      1700,
		CompetitionID: 2021,
		StartDate:     time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2027, 5, 23, 0, 0, 0, 0, time.UTC),
	}
	created, err = db.Competitions.UpsertSeason(ctx, next)
	require.NoError(t, err)
	assert.True(t, created, "A new season ID signals a rollover")
}
