package models

import "time"

type Stage string

const (
	StageGroup        Stage = "GROUP"
	StageRoundOf32    Stage = "ROUND_OF_32"
	StageRoundOf16    Stage = "ROUND_OF_16"
	StageQuarterFinal Stage = "QUARTER_FINAL"
	StageSemiFinal    Stage = "SEMI_FINAL"
	StageFinal        Stage = "FINAL"
	StageOther        Stage = "OTHER"
)

func (s Stage) Valid() bool {
	switch s {
	case StageGroup, StageRoundOf32, StageRoundOf16, StageQuarterFinal, StageSemiFinal, StageFinal, StageOther:
		return true
	}
	return false
}

// Match stores its participants as either two player references (singles) or two pair
// references (doubles), never both. Player1/Pair1 is the host side.
type Match struct {
	ID           int       `json:"id" db:"match_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CourtID      int       `json:"court_id" db:"court_id"`
	Timestamp    time.Time `json:"match_timestamp" db:"match_timestamp"`
	Result       string    `json:"match_result" db:"match_result"`
	Duration     *string   `json:"duration,omitempty" db:"duration"`
	Stage        *Stage    `json:"stage,omitempty" db:"stage"`

	Player1ID *int `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID *int `json:"player2_id,omitempty" db:"player2_id"`
	Pair1ID   *int `json:"pair1_id,omitempty" db:"pair1_id"`
	Pair2ID   *int `json:"pair2_id,omitempty" db:"pair2_id"`

	Player1 *Player `json:"-" db:"-"`
	Player2 *Player `json:"-" db:"-"`
	Pair1   *Pair   `json:"-" db:"-"`
	Pair2   *Pair   `json:"-" db:"-"`
	Court   *Court  `json:"-" db:"-"`
}

// MatchView is the display-ready form of a match.
type MatchView struct {
	ID             int          `json:"id"`
	Timestamp      time.Time    `json:"match_timestamp"`
	Result         string       `json:"match_result"`
	Duration       *string      `json:"duration,omitempty"`
	Stage          *Stage       `json:"stage,omitempty"`
	Participant1   string       `json:"participant1"`
	Participant2   string       `json:"participant2"`
	CourtName      string       `json:"court_name,omitempty"`
	TournamentID   int          `json:"tournament_id"`
	TournamentName string       `json:"tournament_name"`
	CategoryType   CategoryType `json:"category_type"`
	AgeLimit       string       `json:"age_limit"`
	SexLimit       Sex          `json:"sex_limit"`
	Won            *int         `json:"won,omitempty"`
}
