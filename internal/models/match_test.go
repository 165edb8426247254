package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFinishedStatus(t *testing.T) {
	assert.True(t, IsFinishedStatus(MatchStatusFinished))
	assert.True(t, IsFinishedStatus(MatchStatusAwarded))

	for _, status := range []string{
		MatchStatusScheduled, MatchStatusTimed, MatchStatusInPlay,
		MatchStatusPaused, MatchStatusSuspended, MatchStatusPostponed,
		MatchStatusCancelled,
	} {
		assert.False(t, IsFinishedStatus(status), status)
	}
}

func TestMatchInput_ToMatch(t *testing.T) {
	home, away := 2, 1
	matchday := 20

	input := MatchInput{
		ID:       500001,
		Season:   &SeasonInput{ID: 1564},
		UtcDate:  "2026-01-02T15:00:00Z",
		Status:   MatchStatusFinished,
		Matchday: &matchday,
		Stage:    "REGULAR_SEASON",
	}
	input.HomeTeam.ID = 64
	input.AwayTeam.ID = 65
	input.Score.Winner = "HOME_TEAM"
	input.Score.FullTime.Home = &home
	input.Score.FullTime.Away = &away

	match := input.ToMatch(2021)

	assert.Equal(t, 500001, match.MatchID)
	assert.Equal(t, 2021, match.CompetitionID)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC), match.UtcDate)
	assert.Equal(t, 64, match.HomeTeamID)
	assert.Equal(t, 65, match.AwayTeamID)
	require.True(t, match.SeasonID.Valid)
	assert.Equal(t, int32(1564), match.SeasonID.Int32)
	require.True(t, match.HomeScore.Valid)
	assert.Equal(t, int32(2), match.HomeScore.Int32)
	assert.Equal(t, "HOME_TEAM", match.Winner.String)
}

func TestMatchInput_ToMatchScheduled(t *testing.T) {
	input := MatchInput{
		ID:      500002,
		UtcDate: "2026-02-10T20:00:00Z",
		Status:  MatchStatusScheduled,
	}
	input.HomeTeam.ID = 66
	input.AwayTeam.ID = 67

	match := input.ToMatch(2014)

	assert.False(t, match.SeasonID.Valid)
	assert.False(t, match.HomeScore.Valid)
	assert.False(t, match.AwayScore.Valid)
	assert.False(t, match.Winner.Valid)
	assert.False(t, match.Matchday.Valid)
}
