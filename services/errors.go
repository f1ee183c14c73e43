package services

import (
	"errors"

	"github.com/Dosada05/tennis-clubs/storage"
)

// Errors shared by the services and the HTTP error mapping.
var (
	ErrValidationFailed = errors.New("validation failed")
	// ErrUnknownReference is returned when input names a club, court, person or pair that does not exist.
	ErrUnknownReference = errors.New("referenced record does not exist")

	ErrClubNotFound        = errors.New("club not found")
	ErrCourtNotFound       = errors.New("court not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrCoachNotFound       = errors.New("coach not found")
	ErrPairNotFound        = errors.New("pair not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrEquipmentNotFound   = errors.New("equipment not found")
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrTrainingNotFound    = errors.New("training not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrClubNameConflict       = errors.New("club name is already in use")
	ErrCourtNameConflict      = errors.New("club already has a court with this name")
	ErrCourtInUse             = errors.New("court has matches")
	ErrNationalIDConflict     = errors.New("person with this national id already exists")
	ErrRankConflict           = errors.New("rank is already taken")
	ErrPairConflict           = errors.New("pair with these players already exists")
	ErrTournamentNameConflict = errors.New("tournament name is already in use")
	ErrEquipmentConflict      = errors.New("club already owns this equipment")

	ErrInvalidPlace       = errors.New("unknown zip code, provide a place name to register it")
	ErrPairSamePlayers    = errors.New("pair needs two different players")
	ErrSameOpponent       = errors.New("a match needs two different opponents")
	ErrInvalidMatchResult = errors.New("invalid match result")
	ErrInvalidStage       = errors.New("invalid match stage")
	ErrCategoryTypeLocked = errors.New("category type cannot change while the tournament has matches")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginDisabled      = errors.New("administrator login is not configured")

	ErrUploadsDisabled = storage.ErrUploadsDisabled
)
