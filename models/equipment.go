package models

import "time"

type Equipment struct {
	ID    int      `json:"id" db:"equipment_id"`
	Name  string   `json:"name" db:"name"`
	Price *float64 `json:"price,omitempty" db:"price"`
}

// ClubEquipment is equipment owned by a club in some quantity.
type ClubEquipment struct {
	Equipment
	ClubID   int  `json:"club_id" db:"club_id"`
	Quantity *int `json:"quantity,omitempty" db:"quantity"`
}

type Meeting struct {
	ID        int       `json:"id" db:"meeting_id"`
	ClubID    int       `json:"club_id" db:"club_id"`
	Timestamp time.Time `json:"meeting_timestamp" db:"meeting_timestamp"`
	Agenda    string    `json:"agenda" db:"agenda"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`

	AttendeeIDs []int    `json:"-" db:"-"`
	Attendees   []string `json:"attendees" db:"-"`
}

type DashboardStats struct {
	ClubsTotal       int `json:"clubs_total"`
	PlayersTotal     int `json:"players_total"`
	CoachesTotal     int `json:"coaches_total"`
	PairsTotal       int `json:"pairs_total"`
	TournamentsTotal int `json:"tournaments_total"`
	MatchesTotal     int `json:"matches_total"`
}
