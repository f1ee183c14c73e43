package models

import "time"

// Place is deduplicated by zip code.
type Place struct {
	ZipCode int    `json:"zip_code" db:"zip_code"`
	Name    string `json:"name" db:"name"`
}

type Club struct {
	ID             int       `json:"id" db:"club_id"`
	Name           string    `json:"name" db:"name"`
	FoundationYear *int      `json:"foundation_year,omitempty" db:"foundation_year"`
	Email          string    `json:"email" db:"email"`
	PhoneNumber    *string   `json:"phone_number,omitempty" db:"phone_number"`
	WebAddress     *string   `json:"web_address,omitempty" db:"web_address"`
	Budget         *float64  `json:"budget,omitempty" db:"budget"`
	ZipCode        *int      `json:"zip_code,omitempty" db:"zip_code"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	LogoKey        *string   `json:"-" db:"logo_key"`
	LogoURL        *string   `json:"logo_url,omitempty" db:"-"`

	Place  *Place  `json:"place,omitempty" db:"-"`
	Courts []Court `json:"courts,omitempty" db:"-"`
}

// ClubRef is the minimal club reference the affiliation ledger hands out.
type ClubRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Surface string

const (
	SurfaceClay  Surface = "CLAY"
	SurfaceGrass Surface = "GRASS"
	SurfaceHard  Surface = "HARD"
)

type Court struct {
	ID      int      `json:"id" db:"court_id"`
	ClubID  int      `json:"club_id" db:"club_id"`
	Name    string   `json:"name" db:"name"`
	Surface *Surface `json:"surface,omitempty" db:"surface"`
}

// ClubRoster lists the persons currently affiliated with a club.
type ClubRoster struct {
	ClubID  int      `json:"club_id"`
	Players []Person `json:"players"`
	Coaches []Person `json:"coaches"`
}
