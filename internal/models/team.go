package models

import (
	"database/sql"
	"time"
)

// Team represents a football club
type Team struct {
	ID        int            `db:"id"`
	TeamID    int            `db:"team_id"`
	Name      string         `db:"name"`
	ShortName sql.NullString `db:"short_name"`
	Tla       sql.NullString `db:"tla"`
	CrestURL  sql.NullString `db:"crest_url"`
	Venue     sql.NullString `db:"venue"`
	Founded   sql.NullInt32  `db:"founded"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// TeamInput is used for creating/updating teams from API
type TeamInput struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Tla       string `json:"tla"`
	Crest     string `json:"crest"`
	Venue     string `json:"venue"`
	Founded   *int   `json:"founded,omitempty"`
}

// ToTeam converts TeamInput (from API) to Team model
func (ti *TeamInput) ToTeam() *Team {
	team := &Team{
		TeamID: ti.ID,
		Name:   ti.Name,
	}

	if ti.ShortName != "" {
		team.ShortName = sql.NullString{String: ti.ShortName, Valid: true}
	}
	if ti.Tla != "" {
		team.Tla = sql.NullString{String: ti.Tla, Valid: true}
	}
	if ti.Crest != "" {
		team.CrestURL = sql.NullString{String: ti.Crest, Valid: true}
	}
	if ti.Venue != "" {
		team.Venue = sql.NullString{String: ti.Venue, Valid: true}
	}
	if ti.Founded != nil {
		team.Founded = sql.NullInt32{Int32: int32(*ti.Founded), Valid: true}
	}

	return team
}
