package models

import (
	"database/sql"
	"time"
)

// Match statuses as reported by the provider.
const (
	MatchStatusScheduled = "SCHEDULED"
	MatchStatusTimed     = "TIMED"
	MatchStatusInPlay    = "IN_PLAY"
	MatchStatusPaused    = "PAUSED"
	MatchStatusFinished  = "FINISHED"
	MatchStatusSuspended = "SUSPENDED"
	MatchStatusPostponed = "POSTPONED"
	MatchStatusCancelled = "CANCELLED"
	MatchStatusAwarded   = "AWARDED"
)

// IsFinishedStatus reports whether a match status counts as played to
// completion. AWARDED matches have a final result without being played.
func IsFinishedStatus(status string) bool {
	return status == MatchStatusFinished || status == MatchStatusAwarded
}

// Match represents a fixture between two teams
type Match struct {
	ID            int            `db:"id"`
	MatchID       int            `db:"match_id"`
	CompetitionID int            `db:"competition_id"`
	SeasonID      sql.NullInt32  `db:"season_id"`
	UtcDate       time.Time      `db:"utc_date"`
	Status        string         `db:"status"`
	Matchday      sql.NullInt32  `db:"matchday"`
	Stage         sql.NullString `db:"stage"`
	HomeTeamID    int            `db:"home_team_id"`
	AwayTeamID    int            `db:"away_team_id"`
	HomeScore     sql.NullInt32  `db:"home_score"`
	AwayScore     sql.NullInt32  `db:"away_score"`
	Winner        sql.NullString `db:"winner"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// MatchInput is used for creating/updating matches from API
type MatchInput struct {
	ID       int          `json:"id"`
	Season   *SeasonInput `json:"season,omitempty"`
	UtcDate  string       `json:"utcDate"` // ISO 8601
	Status   string       `json:"status"`
	Matchday *int         `json:"matchday,omitempty"`
	Stage    string       `json:"stage"`
	HomeTeam struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"awayTeam"`
	Score struct {
		Winner   string `json:"winner"`
		FullTime struct {
			Home *int `json:"home,omitempty"`
			Away *int `json:"away,omitempty"`
		} `json:"fullTime"`
	} `json:"score"`
}

// ToMatch converts MatchInput (from API) to Match model
func (mi *MatchInput) ToMatch(competitionID int) *Match {
	match := &Match{
		MatchID:       mi.ID,
		CompetitionID: competitionID,
		Status:        mi.Status,
		HomeTeamID:    mi.HomeTeam.ID,
		AwayTeamID:    mi.AwayTeam.ID,
	}

	if t, err := time.Parse(time.RFC3339, mi.UtcDate); err == nil {
		match.UtcDate = t
	}
	if mi.Season != nil {
		match.SeasonID = sql.NullInt32{Int32: int32(mi.Season.ID), Valid: true}
	}
	if mi.Matchday != nil {
		match.Matchday = sql.NullInt32{Int32: int32(*mi.Matchday), Valid: true}
	}
	if mi.Stage != "" {
		match.Stage = sql.NullString{String: mi.Stage, Valid: true}
	}
	if mi.Score.FullTime.Home != nil {
		match.HomeScore = sql.NullInt32{Int32: int32(*mi.Score.FullTime.Home), Valid: true}
	}
	if mi.Score.FullTime.Away != nil {
		match.AwayScore = sql.NullInt32{Int32: int32(*mi.Score.FullTime.Away), Valid: true}
	}
	if mi.Score.Winner != "" {
		match.Winner = sql.NullString{String: mi.Score.Winner, Valid: true}
	}

	return match
}
