package models

import (
	"database/sql"
	"time"
)

// Standing represents one row of a competition's league table
type Standing struct {
	ID             int            `db:"id"`
	CompetitionID  int            `db:"competition_id"`
	SeasonID       int            `db:"season_id"`
	Position       int            `db:"position"`
	TeamID         int            `db:"team_id"`
	PlayedGames    int            `db:"played_games"`
	Won            int            `db:"won"`
	Draw           int            `db:"draw"`
	Lost           int            `db:"lost"`
	Points         int            `db:"points"`
	GoalsFor       int            `db:"goals_for"`
	GoalsAgainst   int            `db:"goals_against"`
	GoalDifference int            `db:"goal_difference"`
	Form           sql.NullString `db:"form"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// StandingsSnapshot is the full league table for one competition season,
// as returned by the standings endpoint.
type StandingsSnapshot struct {
	CompetitionID int
	Season        *SeasonInput
	Table         []StandingInput
}

// StandingInput is one table row from the standings API response
type StandingInput struct {
	Position int `json:"position"`
	Team     struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		ShortName string `json:"shortName"`
		Tla       string `json:"tla"`
		Crest     string `json:"crest"`
	} `json:"team"`
	PlayedGames    int    `json:"playedGames"`
	Form           string `json:"form"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
}

// ToStanding converts StandingInput (from API) to Standing model
func (si *StandingInput) ToStanding(competitionID, seasonID int) *Standing {
	standing := &Standing{
		CompetitionID:  competitionID,
		SeasonID:       seasonID,
		Position:       si.Position,
		TeamID:         si.Team.ID,
		PlayedGames:    si.PlayedGames,
		Won:            si.Won,
		Draw:           si.Draw,
		Lost:           si.Lost,
		Points:         si.Points,
		GoalsFor:       si.GoalsFor,
		GoalsAgainst:   si.GoalsAgainst,
		GoalDifference: si.GoalDifference,
	}

	if si.Form != "" {
		standing.Form = sql.NullString{String: si.Form, Valid: true}
	}

	return standing
}
