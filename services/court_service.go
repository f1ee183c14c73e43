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

type CourtService interface {
	CreateCourt(ctx context.Context, clubID int, input CourtInput) (*models.Court, error)
	GetCourt(ctx context.Context, clubID, courtID int) (*models.Court, error)
	ListCourts(ctx context.Context, clubID int) ([]models.Court, error)
	UpdateCourt(ctx context.Context, clubID, courtID int, input CourtInput) (*models.Court, error)
	DeleteCourt(ctx context.Context, clubID, courtID int) error
}

type CourtInput struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Surface *models.Surface `json:"surface" validate:"omitempty,oneof=CLAY GRASS HARD"`
}

type courtService struct {
	courtRepo repositories.CourtRepository
	clubRepo  repositories.ClubRepository
	views     cache.MatchViewCache
	logger    *slog.Logger
}

func NewCourtService(courtRepo repositories.CourtRepository, clubRepo repositories.ClubRepository, views cache.MatchViewCache, logger *slog.Logger) CourtService {
	return &courtService{courtRepo: courtRepo, clubRepo: clubRepo, views: views, logger: logger}
}

func (s *courtService) CreateCourt(ctx context.Context, clubID int, input CourtInput) (*models.Court, error) {
	if err := s.requireClub(ctx, clubID); err != nil {
		return nil, err
	}
	court := &models.Court{ClubID: clubID, Name: strings.TrimSpace(input.Name), Surface: input.Surface}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		return nil, translateCourtError(err)
	}
	return court, nil
}

func (s *courtService) GetCourt(ctx context.Context, clubID, courtID int) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		return nil, translateCourtError(err)
	}
	if court.ClubID != clubID {
		return nil, ErrCourtNotFound
	}
	return court, nil
}

func (s *courtService) ListCourts(ctx context.Context, clubID int) ([]models.Court, error) {
	if err := s.requireClub(ctx, clubID); err != nil {
		return nil, err
	}
	courts, err := s.courtRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts of club %d: %w", clubID, err)
	}
	return courts, nil
}

func (s *courtService) UpdateCourt(ctx context.Context, clubID, courtID int, input CourtInput) (*models.Court, error) {
	court := &models.Court{ID: courtID, ClubID: clubID, Name: strings.TrimSpace(input.Name), Surface: input.Surface}
	if err := s.courtRepo.Update(ctx, court); err != nil {
		return nil, translateCourtError(err)
	}
	// Match views show the court name.
	invalidateAllMatchViews(ctx, s.views, s.logger)
	return court, nil
}

func (s *courtService) DeleteCourt(ctx context.Context, clubID, courtID int) error {
	if _, err := s.GetCourt(ctx, clubID, courtID); err != nil {
		return err
	}
	return translateCourtError(s.courtRepo.Delete(ctx, courtID))
}

func (s *courtService) requireClub(ctx context.Context, clubID int) error {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return translateClubError(err)
	}
	return nil
}

func translateCourtError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCourtNotFound):
		return ErrCourtNotFound
	case errors.Is(err, repositories.ErrCourtNameConflict):
		return ErrCourtNameConflict
	case errors.Is(err, repositories.ErrCourtInUse):
		return ErrCourtInUse
	case errors.Is(err, repositories.ErrCourtInvalidClub):
		return ErrClubNotFound
	}
	return err
}
