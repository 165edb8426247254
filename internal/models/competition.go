package models

import (
	"database/sql"
	"time"
)

// Competition represents a tracked league or cup
type Competition struct {
	ID              int            `db:"id"`
	CompetitionID   int            `db:"competition_id"`
	Name            string         `db:"name"`
	Code            sql.NullString `db:"code"`
	Type            sql.NullString `db:"type"`
	AreaName        sql.NullString `db:"area_name"`
	EmblemURL       sql.NullString `db:"emblem_url"`
	CurrentSeasonID sql.NullInt32  `db:"current_season_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// Season represents one season of a competition
type Season struct {
	ID              int            `db:"id"`
	SeasonID        int            `db:"season_id"`
	CompetitionID   int            `db:"competition_id"`
	StartDate       time.Time      `db:"start_date"`
	EndDate         time.Time      `db:"end_date"`
	CurrentMatchday sql.NullInt32  `db:"current_matchday"`
	WinnerTeamID    sql.NullInt32  `db:"winner_team_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// CompetitionInput is used for creating/updating competitions from API
type CompetitionInput struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"` // LEAGUE or CUP
	Area struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"area"`
	Emblem        string       `json:"emblem"`
	CurrentSeason *SeasonInput `json:"currentSeason,omitempty"`
}

// SeasonInput is the season object embedded in competition, team and
// standings responses
type SeasonInput struct {
	ID              int    `json:"id"`
	StartDate       string `json:"startDate"` // YYYY-MM-DD
	EndDate         string `json:"endDate"`   // YYYY-MM-DD
	CurrentMatchday *int   `json:"currentMatchday,omitempty"`
	Winner          *struct {
		ID int `json:"id"`
	} `json:"winner,omitempty"`
}

// ToCompetition converts CompetitionInput (from API) to Competition model
func (ci *CompetitionInput) ToCompetition() *Competition {
	comp := &Competition{
		CompetitionID: ci.ID,
		Name:          ci.Name,
	}

	if ci.Code != "" {
		comp.Code = sql.NullString{String: ci.Code, Valid: true}
	}
	if ci.Type != "" {
		comp.Type = sql.NullString{String: ci.Type, Valid: true}
	}
	if ci.Area.Name != "" {
		comp.AreaName = sql.NullString{String: ci.Area.Name, Valid: true}
	}
	if ci.Emblem != "" {
		comp.EmblemURL = sql.NullString{String: ci.Emblem, Valid: true}
	}
	if ci.CurrentSeason != nil {
		comp.CurrentSeasonID = sql.NullInt32{Int32: int32(ci.CurrentSeason.ID), Valid: true}
	}

	return comp
}

// ToSeason converts SeasonInput (from API) to Season model
func (si *SeasonInput) ToSeason(competitionID int) *Season {
	season := &Season{
		SeasonID:      si.ID,
		CompetitionID: competitionID,
	}

	if t, err := time.Parse("2006-01-02", si.StartDate); err == nil {
		season.StartDate = t
	}
	if t, err := time.Parse("2006-01-02", si.EndDate); err == nil {
		season.EndDate = t
	}
	if si.CurrentMatchday != nil {
		season.CurrentMatchday = sql.NullInt32{Int32: int32(*si.CurrentMatchday), Valid: true}
	}
	if si.Winner != nil {
		season.WinnerTeamID = sql.NullInt32{Int32: int32(si.Winner.ID), Valid: true}
	}

	return season
}
