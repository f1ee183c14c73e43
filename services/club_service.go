package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/storage"
)

type ClubService interface {
	CreateClub(ctx context.Context, input ClubInput) (*models.Club, error)
	GetClub(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context, filter repositories.ListClubsFilter) ([]models.Club, error)
	UpdateClub(ctx context.Context, id int, input ClubInput) (*models.Club, error)
	DeleteClub(ctx context.Context, id int) error
	UploadClubLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Club, error)
	GetRoster(ctx context.Context, id int) (*models.ClubRoster, error)
}

type ClubInput struct {
	Name           string   `json:"name" validate:"required,max=100"`
	FoundationYear *int     `json:"foundation_year" validate:"omitempty,gte=1800,lte=2100"`
	Email          string   `json:"email" validate:"required,email"`
	PhoneNumber    *string  `json:"phone_number" validate:"omitempty,max=30"`
	WebAddress     *string  `json:"web_address" validate:"omitempty,url"`
	Budget         *float64 `json:"budget" validate:"omitempty,gte=0"`
	ZipCode        *int     `json:"zip_code" validate:"omitempty,gt=0"`
	PlaceName      string   `json:"place_name" validate:"omitempty,max=100"`
}

func (in ClubInput) toClub(id int) *models.Club {
	return &models.Club{
		ID:             id,
		Name:           strings.TrimSpace(in.Name),
		FoundationYear: in.FoundationYear,
		Email:          strings.TrimSpace(in.Email),
		PhoneNumber:    in.PhoneNumber,
		WebAddress:     in.WebAddress,
		Budget:         in.Budget,
		ZipCode:        in.ZipCode,
	}
}

// ClubRepositories groups everything a club owns, so a club delete can reach all of it.
type ClubRepositories struct {
	Clubs        repositories.ClubRepository
	Places       repositories.PlaceRepository
	Courts       repositories.CourtRepository
	Equipment    repositories.EquipmentRepository
	Meetings     repositories.MeetingRepository
	Transactions repositories.TransactionRepository
	Represents   repositories.AffiliationRepository
	Coaching     repositories.AffiliationRepository
	Tournaments  repositories.TournamentRepository
	Matches      repositories.MatchRepository
	Categories   repositories.CategoryRepository
}

type clubService struct {
	tx       repositories.Transactor
	repos    ClubRepositories
	uploader storage.FileUploader
	views    cache.MatchViewCache
	logger   *slog.Logger
}

// NewClubService accepts a nil uploader; logo uploads then fail with ErrUploadsDisabled.
func NewClubService(
	tx repositories.Transactor,
	repos ClubRepositories,
	uploader storage.FileUploader,
	views cache.MatchViewCache,
	logger *slog.Logger,
) ClubService {
	return &clubService{
		tx:       tx,
		repos:    repos,
		uploader: uploader,
		views:    views,
		logger:   logger,
	}
}

func (s *clubService) CreateClub(ctx context.Context, input ClubInput) (*models.Club, error) {
	club := input.toClub(0)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := ensurePlace(ctx, s.repos.Places.WithTx(exec), input.ZipCode, input.PlaceName); err != nil {
			return err
		}
		return translateClubError(s.repos.Clubs.WithTx(exec).Create(ctx, club))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	s.logger.InfoContext(ctx, "club created", slog.Int("club_id", club.ID))
	return s.GetClub(ctx, club.ID)
}

func (s *clubService) GetClub(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.repos.Clubs.GetByID(ctx, id)
	if err != nil {
		return nil, translateClubError(err)
	}
	courts, err := s.repos.Courts.ListByClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts of club %d: %w", id, err)
	}
	club.Courts = courts
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context, filter repositories.ListClubsFilter) ([]models.Club, error) {
	clubs, err := s.repos.Clubs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for i := range clubs {
		populateClubLogoURL(&clubs[i], s.uploader)
	}
	if clubs == nil {
		return []models.Club{}, nil
	}
	return clubs, nil
}

func (s *clubService) UpdateClub(ctx context.Context, id int, input ClubInput) (*models.Club, error) {
	club := input.toClub(id)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := ensurePlace(ctx, s.repos.Places.WithTx(exec), input.ZipCode, input.PlaceName); err != nil {
			return err
		}
		return translateClubError(s.repos.Clubs.WithTx(exec).Update(ctx, club))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update club %d: %w", id, err)
	}
	return s.GetClub(ctx, id)
}

// DeleteClub removes the club and everything hanging off it in one transaction:
// tournaments with their matches and orphaned categories, meetings, transactions,
// equipment ownership, affiliations of both kinds and courts.
func (s *clubService) DeleteClub(ctx context.Context, id int) error {
	var logoKey *string
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		club, err := s.repos.Clubs.WithTx(exec).GetByID(ctx, id)
		if err != nil {
			return translateClubError(err)
		}
		logoKey = club.LogoKey

		tournaments, err := s.repos.Tournaments.WithTx(exec).List(ctx, repositories.ListTournamentsFilter{ClubID: &id})
		if err != nil {
			return fmt.Errorf("failed to list tournaments: %w", err)
		}
		for _, t := range tournaments {
			if err := deleteTournament(ctx, exec, t.ID, s.repos.Tournaments, s.repos.Matches, s.repos.Categories); err != nil {
				return fmt.Errorf("tournament %d: %w", t.ID, err)
			}
		}

		steps := []struct {
			what string
			run  func() error
		}{
			{"meetings", func() error { return s.repos.Meetings.WithTx(exec).DeleteByClub(ctx, id) }},
			{"transactions", func() error { return s.repos.Transactions.WithTx(exec).DeleteByClub(ctx, id) }},
			{"equipment", func() error { return s.repos.Equipment.WithTx(exec).RemoveAllFromClub(ctx, id) }},
			{"player affiliations", func() error { return s.repos.Represents.WithTx(exec).DeleteByClub(ctx, id) }},
			{"coach affiliations", func() error { return s.repos.Coaching.WithTx(exec).DeleteByClub(ctx, id) }},
			{"courts", func() error { return s.repos.Courts.WithTx(exec).DeleteByClub(ctx, id) }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.what, err)
			}
		}
		return translateClubError(s.repos.Clubs.WithTx(exec).Delete(ctx, id))
	})
	if err != nil {
		if errors.Is(err, ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to delete club %d: %w", id, err)
	}

	invalidateAllMatchViews(ctx, s.views, s.logger)
	s.removeLogo(ctx, logoKey)
	s.logger.InfoContext(ctx, "club deleted", slog.Int("club_id", id))
	return nil
}

func (s *clubService) UploadClubLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Club, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	club, err := s.repos.Clubs.GetByID(ctx, id)
	if err != nil {
		return nil, translateClubError(err)
	}
	key, err := storage.LogoKey(id, contentType, timeNow())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo of club %d: %w", id, err)
	}
	if err := s.repos.Clubs.UpdateLogoKey(ctx, id, &key); err != nil {
		s.removeLogo(ctx, &key)
		return nil, fmt.Errorf("failed to store logo key of club %d: %w", id, err)
	}
	s.removeLogo(ctx, club.LogoKey)

	return s.GetClub(ctx, id)
}

func (s *clubService) removeLogo(ctx context.Context, key *string) {
	if key == nil || *key == "" || s.uploader == nil {
		return
	}
	if err := s.uploader.Delete(ctx, *key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete club logo", slog.String("key", *key), slog.Any("error", err))
	}
}

// GetRoster lists the players and coaches whose open affiliation is at the club.
func (s *clubService) GetRoster(ctx context.Context, id int) (*models.ClubRoster, error) {
	if _, err := s.repos.Clubs.GetByID(ctx, id); err != nil {
		return nil, translateClubError(err)
	}
	players, err := s.repos.Represents.ListCurrentMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of club %d: %w", id, err)
	}
	coaches, err := s.repos.Coaching.ListCurrentMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches of club %d: %w", id, err)
	}
	return &models.ClubRoster{ClubID: id, Players: players, Coaches: coaches}, nil
}

func translateClubError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrClubNameConflict):
		return ErrClubNameConflict
	case errors.Is(err, repositories.ErrClubInvalidPlace):
		return ErrInvalidPlace
	}
	return err
}
