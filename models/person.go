package models

import (
	"fmt"
	"time"
)

type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

type Hand string

const (
	HandLeft  Hand = "LEFT"
	HandRight Hand = "RIGHT"
)

// Person is the identity shared by players and coaches.
type Person struct {
	ID          int        `json:"id" db:"person_id"`
	NationalID  string     `json:"national_id" db:"oib"`
	Name        string     `json:"name" db:"name"`
	Surname     string     `json:"surname" db:"surname"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Sex         Sex        `json:"sex" db:"sex"`
	ZipCode     *int       `json:"zip_code,omitempty" db:"zip_code"`

	Place *Place `json:"place,omitempty" db:"-"`
}

// Label renders the person the way match and meeting listings show them.
func (p Person) Label() string {
	return fmt.Sprintf("%s %s, %s", p.Name, p.Surname, p.NationalID)
}

type Player struct {
	Person
	Height        *float64 `json:"height,omitempty" db:"height"`
	Weight        *float64 `json:"weight,omitempty" db:"weight"`
	PreferredHand *Hand    `json:"preferred_hand,omitempty" db:"preferred_hand"`
	Rank          *int     `json:"rank,omitempty" db:"rank"`
	Injury        *string  `json:"injury,omitempty" db:"injury"`
}

type Coach struct {
	Person
	YearsOfExperience *int    `json:"years_of_experience,omitempty" db:"years_of_experience"`
	Specialization    *string `json:"specialization,omitempty" db:"specialization"`
}

// PersonFilter narrows player and coach listings.
type PersonFilter struct {
	Surname *string
	Sex     *Sex
	Limit   int
	Offset  int
}
