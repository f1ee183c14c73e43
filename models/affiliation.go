package models

import (
	"fmt"
	"time"
)

// AffiliationKind selects which person-to-club relation a ledger works on.
type AffiliationKind string

const (
	AffiliationRepresents AffiliationKind = "represents"
	AffiliationCoaches    AffiliationKind = "holds_training_sessions"
)

// Affiliation is one date-ranged spell of a person at a club. A nil To marks the open (current) row.
// (PersonID, ClubID) is the key, so a person has at most one row per club.
type Affiliation struct {
	PersonID int        `json:"person_id" db:"person_id"`
	ClubID   int        `json:"club_id" db:"club_id"`
	ClubName string     `json:"club_name" db:"-"`
	From     time.Time  `json:"from" db:"from_date"`
	To       *time.Time `json:"to,omitempty" db:"to_date"`
}

func (a Affiliation) IsOpen() bool {
	return a.To == nil
}

type HistoryEntry struct {
	ClubID   int       `json:"club_id"`
	ClubName string    `json:"club_name"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Label renders the entry as "Club: 1.1.2020. - 1.6.2022.".
func (h HistoryEntry) Label() string {
	return fmt.Sprintf("%s: %s - %s", h.ClubName, formatDay(h.From), formatDay(h.To))
}

func formatDay(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d.", t.Day(), int(t.Month()), t.Year())
}

// AffiliationSummary is the current club plus closed spells of one person.
type AffiliationSummary struct {
	PersonID int            `json:"person_id"`
	Current  *ClubRef       `json:"current_club,omitempty"`
	History  []HistoryEntry `json:"history"`
}
