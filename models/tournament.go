package models

import "fmt"

type CategoryType string

const (
	CategorySingles CategoryType = "SINGLES"
	CategoryDoubles CategoryType = "DOUBLES"
)

func (c CategoryType) Valid() bool {
	return c == CategorySingles || c == CategoryDoubles
}

// Category is deduplicated by (Type, AgeLimit, SexLimit).
type Category struct {
	ID       int          `json:"id" db:"category_id"`
	Type     CategoryType `json:"type" db:"type"`
	AgeLimit string       `json:"age_limit" db:"age_limit"`
	SexLimit Sex          `json:"sex_limit" db:"sex_limit"`
}

type Tournament struct {
	ID         int    `json:"id" db:"tournament_id"`
	Name       string `json:"name" db:"name"`
	ClubID     int    `json:"club_id" db:"club_id"`
	CategoryID int    `json:"category_id" db:"category_id"`

	Club     *Club     `json:"club,omitempty" db:"-"`
	Category *Category `json:"category,omitempty" db:"-"`
}

// Pair is a doubles team. Member order is kept but does not matter for equality.
type Pair struct {
	ID        int  `json:"id" db:"pair_id"`
	Player1ID int  `json:"player1_id" db:"player1_id"`
	Player2ID int  `json:"player2_id" db:"player2_id"`
	Rank      *int `json:"rank,omitempty" db:"rank"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

func (p Pair) HasMember(personID int) bool {
	return p.Player1ID == personID || p.Player2ID == personID
}

func (p Pair) SameMembers(other Pair) bool {
	return (p.Player1ID == other.Player1ID && p.Player2ID == other.Player2ID) ||
		(p.Player1ID == other.Player2ID && p.Player2ID == other.Player1ID)
}

// Label renders the pair as "Surname1-Surname2, id". Both members must be loaded.
func (p Pair) Label() string {
	return fmt.Sprintf("%s-%s, %d", p.Player1.Surname, p.Player2.Surname, p.ID)
}
