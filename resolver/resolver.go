// Package resolver turns a stored match into its participants, display labels and winner.
//
// A match belongs to a tournament whose category decides its shape: SINGLES matches reference
// two players, DOUBLES matches reference two pairs. The first reference of each shape is the host side.
package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrParse           = errors.New("match result is not in the form host-guest")
	ErrDataConsistency = errors.New("match participants do not fit the tournament category")
	ErrCourtNotFound   = errors.New("court not found")
	ErrNotParticipant  = errors.New("viewer did not play in this match")
)

type Side int

const (
	SideNone Side = iota
	SideHost
	SideGuest
)

// WinnerFlag is 1 when the viewer's side won and 0 otherwise.
type WinnerFlag int

const (
	Lost WinnerFlag = 0
	Won  WinnerFlag = 1
)

// Participants is either Singles or Doubles.
type Participants interface {
	Labels() (host, guest string)
	Category() models.CategoryType
}

type Singles struct {
	Host  *models.Player
	Guest *models.Player
}

func (s Singles) Labels() (string, string) {
	return s.Host.Label(), s.Guest.Label()
}

func (Singles) Category() models.CategoryType { return models.CategorySingles }

type Doubles struct {
	Host  *models.Pair
	Guest *models.Pair
}

func (d Doubles) Labels() (string, string) {
	return d.Host.Label(), d.Guest.Label()
}

func (Doubles) Category() models.CategoryType { return models.CategoryDoubles }

// Bind checks that the match has exactly the shape its category asks for, with every
// referenced record loaded, and returns the typed participants.
func Bind(category models.Category, m models.Match) (Participants, error) {
	hasPlayers := m.Player1ID != nil || m.Player2ID != nil
	hasPairs := m.Pair1ID != nil || m.Pair2ID != nil

	switch category.Type {
	case models.CategorySingles:
		if hasPairs {
			return nil, inconsistent(m, "singles match references pairs")
		}
		if m.Player1ID == nil || m.Player2ID == nil {
			return nil, inconsistent(m, "singles match needs two players")
		}
		if m.Player1 == nil || m.Player2 == nil {
			return nil, inconsistent(m, "players are not loaded")
		}
		return Singles{Host: m.Player1, Guest: m.Player2}, nil

	case models.CategoryDoubles:
		if hasPlayers {
			return nil, inconsistent(m, "doubles match references players")
		}
		if m.Pair1ID == nil || m.Pair2ID == nil {
			return nil, inconsistent(m, "doubles match needs two pairs")
		}
		if !pairLoaded(m.Pair1) || !pairLoaded(m.Pair2) {
			return nil, inconsistent(m, "pairs are not loaded")
		}
		return Doubles{Host: m.Pair1, Guest: m.Pair2}, nil

	default:
		return nil, inconsistent(m, fmt.Sprintf("unknown category type %q", category.Type))
	}
}

// ResolveParticipants returns the two display labels, host first.
func ResolveParticipants(t models.Tournament, m models.Match) (string, string, error) {
	if t.Category == nil {
		return "", "", inconsistent(m, "tournament category is not loaded")
	}
	p, err := Bind(*t.Category, m)
	if err != nil {
		return "", "", err
	}
	host, guest := p.Labels()
	return host, guest, nil
}

type Score struct {
	Host  int
	Guest int
}

// ParseResult reads results such as "6-3" or " 7 - 5 ".
func ParseResult(result string) (Score, error) {
	hostPart, guestPart, ok := strings.Cut(result, "-")
	if !ok || strings.Contains(guestPart, "-") {
		return Score{}, fmt.Errorf("%w: %q", ErrParse, result)
	}
	host, err := parseGames(hostPart)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrParse, result)
	}
	guest, err := parseGames(guestPart)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrParse, result)
	}
	return Score{Host: host, Guest: guest}, nil
}

func parseGames(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Winner is SideNone on a tie.
func (s Score) Winner() Side {
	switch {
	case s.Host > s.Guest:
		return SideHost
	case s.Guest > s.Host:
		return SideGuest
	default:
		return SideNone
	}
}

// ResolveWinner reports whether the side personID played on won the match.
func ResolveWinner(m models.Match, personID int) (WinnerFlag, error) {
	side, err := sideOfPerson(m, personID)
	if err != nil {
		return Lost, err
	}
	return flagFor(m, side)
}

// ResolvePairWinner reports whether pairID won the doubles match.
func ResolvePairWinner(m models.Match, pairID int) (WinnerFlag, error) {
	var side Side
	switch {
	case m.Pair1ID != nil && *m.Pair1ID == pairID:
		side = SideHost
	case m.Pair2ID != nil && *m.Pair2ID == pairID:
		side = SideGuest
	default:
		return Lost, fmt.Errorf("%w: pair %d in match %d", ErrNotParticipant, pairID, m.ID)
	}
	return flagFor(m, side)
}

func sideOfPerson(m models.Match, personID int) (Side, error) {
	if m.Player1ID != nil || m.Player2ID != nil {
		switch {
		case m.Player1ID != nil && *m.Player1ID == personID:
			return SideHost, nil
		case m.Player2ID != nil && *m.Player2ID == personID:
			return SideGuest, nil
		}
		return SideNone, fmt.Errorf("%w: person %d in match %d", ErrNotParticipant, personID, m.ID)
	}

	if (m.Pair1ID != nil && m.Pair1 == nil) || (m.Pair2ID != nil && m.Pair2 == nil) {
		return SideNone, inconsistent(m, "pairs are not loaded")
	}
	switch {
	case m.Pair1 != nil && m.Pair1.HasMember(personID):
		return SideHost, nil
	case m.Pair2 != nil && m.Pair2.HasMember(personID):
		return SideGuest, nil
	}
	return SideNone, fmt.Errorf("%w: person %d in match %d", ErrNotParticipant, personID, m.ID)
}

func flagFor(m models.Match, side Side) (WinnerFlag, error) {
	score, err := ParseResult(m.Result)
	if err != nil {
		return Lost, err
	}
	if score.Winner() == side {
		return Won, nil
	}
	return Lost, nil
}

// FindCourtByName looks the court up among one club's courts.
func FindCourtByName(courts []models.Court, name string) (*models.Court, error) {
	for i := range courts {
		if courts[i].Name == name {
			c := courts[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCourtNotFound, name)
}

// View builds the display record of a match. The tournament's category must be loaded.
func View(t models.Tournament, m models.Match) (models.MatchView, error) {
	host, guest, err := ResolveParticipants(t, m)
	if err != nil {
		return models.MatchView{}, err
	}
	v := models.MatchView{
		ID:             m.ID,
		Timestamp:      m.Timestamp,
		Result:         m.Result,
		Duration:       m.Duration,
		Stage:          m.Stage,
		Participant1:   host,
		Participant2:   guest,
		TournamentID:   t.ID,
		TournamentName: t.Name,
		CategoryType:   t.Category.Type,
		AgeLimit:       t.Category.AgeLimit,
		SexLimit:       t.Category.SexLimit,
	}
	if m.Court != nil {
		v.CourtName = m.Court.Name
	}
	return v, nil
}

// ViewForPerson is View with the winner flag of the side personID played on.
func ViewForPerson(t models.Tournament, m models.Match, personID int) (models.MatchView, error) {
	v, err := View(t, m)
	if err != nil {
		return v, err
	}
	flag, err := ResolveWinner(m, personID)
	if err != nil {
		return models.MatchView{}, err
	}
	won := int(flag)
	v.Won = &won
	return v, nil
}

// ViewForPair is View with the winner flag of pairID.
func ViewForPair(t models.Tournament, m models.Match, pairID int) (models.MatchView, error) {
	v, err := View(t, m)
	if err != nil {
		return v, err
	}
	flag, err := ResolvePairWinner(m, pairID)
	if err != nil {
		return models.MatchView{}, err
	}
	won := int(flag)
	v.Won = &won
	return v, nil
}

func pairLoaded(p *models.Pair) bool {
	return p != nil && p.Player1 != nil && p.Player2 != nil
}

func inconsistent(m models.Match, reason string) error {
	return fmt.Errorf("%w: match %d: %s", ErrDataConsistency, m.ID, reason)
}
