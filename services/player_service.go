package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/resolver"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*PlayerDetails, error)
	GetPlayer(ctx context.Context, id int) (*PlayerDetails, error)
	ListPlayers(ctx context.Context, filter models.PersonFilter) ([]PlayerDetails, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*PlayerDetails, error)
	DeletePlayer(ctx context.Context, id int) error
	TransferPlayer(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error)
	TerminatePlayer(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error)
	GetAffiliations(ctx context.Context, id int) (*models.AffiliationSummary, error)
	GetSinglesMatches(ctx context.Context, id int) ([]models.MatchView, error)
}

type PlayerInput struct {
	PersonInput
	Height        *float64     `json:"height" validate:"omitempty,gt=0"`
	Weight        *float64     `json:"weight" validate:"omitempty,gt=0"`
	PreferredHand *models.Hand `json:"preferred_hand" validate:"omitempty,oneof=LEFT RIGHT"`
	Rank          *int         `json:"rank" validate:"omitempty,gt=0"`
	Injury        *string      `json:"injury" validate:"omitempty,max=255"`
	// Club is the club name. On create the player joins it, on update a different club is a transfer.
	Club     string `json:"club" validate:"omitempty,max=100"`
	ClubFrom string `json:"club_from" validate:"omitempty,datetime=2006-01-02"`
}

// PlayerDetails is a player with their club history.
type PlayerDetails struct {
	models.Player
	Affiliations models.AffiliationSummary `json:"affiliations"`
}

type playerService struct {
	tx           repositories.Transactor
	playerRepo   repositories.PlayerRepository
	pairRepo     repositories.PairRepository
	matchRepo    repositories.MatchRepository
	placeRepo    repositories.PlaceRepository
	affiliations clubAffiliations
	loader       matchLoader
	views        cache.MatchViewCache
	logger       *slog.Logger
}

func NewPlayerService(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	pairRepo repositories.PairRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	placeRepo repositories.PlaceRepository,
	representsRepo repositories.AffiliationRepository,
	views cache.MatchViewCache,
	policy ledger.RejoinPolicy,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		tx:           tx,
		playerRepo:   playerRepo,
		pairRepo:     pairRepo,
		matchRepo:    matchRepo,
		placeRepo:    placeRepo,
		affiliations: newClubAffiliations(representsRepo, clubRepo, policy, logger),
		loader:       matchLoader{playerRepo: playerRepo, pairRepo: pairRepo, tournamentRepo: tournamentRepo},
		views:        views,
		logger:       logger,
	}
}

func (in PlayerInput) toPlayer(id int) (*models.Player, error) {
	person, err := in.PersonInput.toPerson(id)
	if err != nil {
		return nil, err
	}
	return &models.Player{
		Person:        person,
		Height:        in.Height,
		Weight:        in.Weight,
		PreferredHand: in.PreferredHand,
		Rank:          in.Rank,
		Injury:        in.Injury,
	}, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input PlayerInput) (*PlayerDetails, error) {
	player, err := input.toPlayer(0)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("club_from", input.ClubFrom)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := ensurePlace(ctx, s.placeRepo.WithTx(exec), input.ZipCode, input.PlaceName); err != nil {
			return err
		}
		if err := s.playerRepo.WithTx(exec).Create(ctx, player); err != nil {
			return translatePersonError(err)
		}
		if input.Club == "" {
			return nil
		}
		club, err := s.affiliations.clubByName(ctx, exec, input.Club)
		if err != nil {
			return err
		}
		return s.affiliations.ledger(exec).Join(ctx, player.ID, club.ID, dateOrToday(from))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player created", slog.Int("player_id", player.ID))
	return s.GetPlayer(ctx, player.ID)
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*PlayerDetails, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	summary, err := s.affiliations.summary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get affiliations of player %d: %w", id, err)
	}
	return &PlayerDetails{Player: *player, Affiliations: summary}, nil
}

func (s *playerService) ListPlayers(ctx context.Context, filter models.PersonFilter) ([]PlayerDetails, error) {
	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	summaries, err := s.affiliations.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PlayerDetails, len(players))
	for i, p := range players {
		out[i] = PlayerDetails{Player: p, Affiliations: summaries[p.ID]}
	}
	return out, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*PlayerDetails, error) {
	player, err := input.toPlayer(id)
	if err != nil {
		return nil, err
	}
	from, err := parseDate("club_from", input.ClubFrom)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := ensurePlace(ctx, s.placeRepo.WithTx(exec), input.ZipCode, input.PlaceName); err != nil {
			return err
		}
		if err := s.playerRepo.WithTx(exec).Update(ctx, player); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return translatePersonError(err)
		}
		if input.Club == "" {
			return nil
		}
		return s.affiliations.assign(ctx, exec, id, input.Club, from)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update player %d: %w", id, err)
	}

	// Labels in cached match views carry the player's name.
	invalidateAllMatchViews(ctx, s.views, s.logger)
	return s.GetPlayer(ctx, id)
}

// DeletePlayer removes the player together with their affiliations, singles matches,
// pairs and the doubles matches of those pairs.
func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		playerRepo := s.playerRepo.WithTx(exec)
		if _, err := playerRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		pairRepo := s.pairRepo.WithTx(exec)
		matchRepo := s.matchRepo.WithTx(exec)
		pairs, err := pairRepo.ListByPlayer(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list pairs: %w", err)
		}
		for _, pair := range pairs {
			if err := matchRepo.DeleteByPair(ctx, pair.ID); err != nil {
				return fmt.Errorf("failed to delete matches of pair %d: %w", pair.ID, err)
			}
			if err := pairRepo.Delete(ctx, pair.ID); err != nil {
				return fmt.Errorf("failed to delete pair %d: %w", pair.ID, err)
			}
		}
		if err := matchRepo.DeleteByPlayer(ctx, id); err != nil {
			return fmt.Errorf("failed to delete singles matches: %w", err)
		}
		if err := s.affiliations.repo.WithTx(exec).DeleteByPerson(ctx, id); err != nil {
			return fmt.Errorf("failed to delete affiliations: %w", err)
		}
		return playerRepo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}

	invalidateAllMatchViews(ctx, s.views, s.logger)
	s.logger.InfoContext(ctx, "player deleted", slog.Int("player_id", id))
	return nil
}

func (s *playerService) TransferPlayer(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error) {
	if input.Club == "" {
		return nil, fmt.Errorf("%w: club is required", ErrValidationFailed)
	}
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if err := s.requirePlayer(ctx, id); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.affiliations.transfer(ctx, exec, id, input.Club, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer player %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "player transferred", slog.Int("player_id", id), slog.String("club", input.Club))
	return s.GetAffiliations(ctx, id)
}

func (s *playerService) TerminatePlayer(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error) {
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if err := s.requirePlayer(ctx, id); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.affiliations.terminate(ctx, exec, id, input.Club, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to terminate affiliation of player %d: %w", id, err)
	}
	return s.GetAffiliations(ctx, id)
}

func (s *playerService) GetAffiliations(ctx context.Context, id int) (*models.AffiliationSummary, error) {
	if err := s.requirePlayer(ctx, id); err != nil {
		return nil, err
	}
	summary, err := s.affiliations.summary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get affiliations of player %d: %w", id, err)
	}
	return &summary, nil
}

// GetSinglesMatches lists the player's singles matches, each flagged with whether the player won.
func (s *playerService) GetSinglesMatches(ctx context.Context, id int) ([]models.MatchView, error) {
	if err := s.requirePlayer(ctx, id); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of player %d: %w", id, err)
	}
	if err := s.loader.hydrate(ctx, matches); err != nil {
		return nil, err
	}
	tournaments, err := s.loader.tournaments(ctx, matches)
	if err != nil {
		return nil, err
	}

	views := make([]models.MatchView, 0, len(matches))
	for _, m := range matches {
		v, err := resolver.ViewForPerson(*tournaments[m.TournamentID], m, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "cannot build match view", slog.Int("match_id", m.ID), slog.Any("error", err))
			return nil, err
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Timestamp.Before(views[j].Timestamp) })
	return views, nil
}

func (s *playerService) requirePlayer(ctx context.Context, id int) error {
	if _, err := s.playerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return nil
}
