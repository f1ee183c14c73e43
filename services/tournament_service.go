package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
}

// TournamentInput names the host club and the category triple; the category is created on first use.
type TournamentInput struct {
	Name         string              `json:"name" validate:"required,max=100"`
	Club         string              `json:"club" validate:"required,max=100"`
	CategoryType models.CategoryType `json:"category_type" validate:"required,oneof=SINGLES DOUBLES"`
	AgeLimit     string              `json:"age_limit" validate:"required,max=20"`
	SexLimit     models.Sex          `json:"sex_limit" validate:"required,oneof=MALE FEMALE"`
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	clubRepo       repositories.ClubRepository
	matchRepo      repositories.MatchRepository
	views          cache.MatchViewCache
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	clubRepo repositories.ClubRepository,
	matchRepo repositories.MatchRepository,
	views cache.MatchViewCache,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		clubRepo:       clubRepo,
		matchRepo:      matchRepo,
		views:          views,
		logger:         logger,
	}
}

func (in TournamentInput) category() (*models.Category, error) {
	if !in.CategoryType.Valid() {
		return nil, fmt.Errorf("%w: category_type must be SINGLES or DOUBLES", ErrValidationFailed)
	}
	if !in.SexLimit.Valid() {
		return nil, fmt.Errorf("%w: sex_limit must be MALE or FEMALE", ErrValidationFailed)
	}
	ageLimit := strings.TrimSpace(in.AgeLimit)
	if ageLimit == "" {
		return nil, fmt.Errorf("%w: age_limit is required", ErrValidationFailed)
	}
	return &models.Category{Type: in.CategoryType, AgeLimit: ageLimit, SexLimit: in.SexLimit}, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	category, err := input.category()
	if err != nil {
		return nil, err
	}

	tournament := &models.Tournament{Name: name}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		club, err := clubByName(ctx, s.clubRepo.WithTx(exec), input.Club)
		if err != nil {
			return err
		}
		if err := s.categoryRepo.WithTx(exec).FindOrCreate(ctx, category); err != nil {
			return fmt.Errorf("failed to find or create category: %w", err)
		}
		tournament.ClubID = club.ID
		tournament.CategoryID = category.ID
		return translateTournamentError(s.tournamentRepo.WithTx(exec).Create(ctx, tournament))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", tournament.ID))
	return s.GetTournament(ctx, tournament.ID)
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

// UpdateTournament re-resolves the category; a category left without tournaments is removed.
func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	category, err := input.category()
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournamentRepo := s.tournamentRepo.WithTx(exec)
		categoryRepo := s.categoryRepo.WithTx(exec)

		existing, err := tournamentRepo.GetByID(ctx, id)
		if err != nil {
			return translateTournamentError(err)
		}
		club, err := clubByName(ctx, s.clubRepo.WithTx(exec), input.Club)
		if err != nil {
			return err
		}

		if existing.Category == nil || existing.Category.Type != category.Type {
			count, err := s.matchRepo.WithTx(exec).CountByTournament(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to count matches: %w", err)
			}
			if count > 0 {
				return ErrCategoryTypeLocked
			}
		}

		if err := categoryRepo.FindOrCreate(ctx, category); err != nil {
			return fmt.Errorf("failed to find or create category: %w", err)
		}
		updated := &models.Tournament{ID: id, Name: name, ClubID: club.ID, CategoryID: category.ID}
		if err := tournamentRepo.Update(ctx, updated); err != nil {
			return translateTournamentError(err)
		}
		if existing.CategoryID != category.ID {
			if _, err := categoryRepo.DeleteIfOrphaned(ctx, existing.CategoryID); err != nil {
				return fmt.Errorf("failed to clean up category %d: %w", existing.CategoryID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}

	invalidateTournamentViews(ctx, s.views, id, s.logger)
	return s.GetTournament(ctx, id)
}

// DeleteTournament removes the tournament with its matches, and its category if nothing else uses it.
func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return deleteTournament(ctx, exec, id, s.tournamentRepo, s.matchRepo, s.categoryRepo)
	})
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	invalidateTournamentViews(ctx, s.views, id, s.logger)
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id))
	return nil
}

func deleteTournament(
	ctx context.Context,
	exec repositories.SQLExecutor,
	id int,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	categoryRepo repositories.CategoryRepository,
) error {
	t, err := tournamentRepo.WithTx(exec).GetByID(ctx, id)
	if err != nil {
		return translateTournamentError(err)
	}
	if err := matchRepo.WithTx(exec).DeleteByTournament(ctx, id); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	if err := tournamentRepo.WithTx(exec).Delete(ctx, id); err != nil {
		return translateTournamentError(err)
	}
	if _, err := categoryRepo.WithTx(exec).DeleteIfOrphaned(ctx, t.CategoryID); err != nil {
		return fmt.Errorf("failed to clean up category %d: %w", t.CategoryID, err)
	}
	return nil
}

func translateTournamentError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidClub), errors.Is(err, repositories.ErrTournamentInvalidCategory):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}
	return err
}
