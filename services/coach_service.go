package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type CoachService interface {
	CreateCoach(ctx context.Context, input CoachInput) (*CoachDetails, error)
	GetCoach(ctx context.Context, id int) (*CoachDetails, error)
	ListCoaches(ctx context.Context, filter models.PersonFilter) ([]CoachDetails, error)
	UpdateCoach(ctx context.Context, id int, input CoachInput) (*CoachDetails, error)
	DeleteCoach(ctx context.Context, id int) error
	TransferCoach(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error)
	TerminateCoach(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error)
	GetAffiliations(ctx context.Context, id int) (*models.AffiliationSummary, error)
}

type CoachInput struct {
	PersonInput
	YearsOfExperience *int    `json:"years_of_experience" validate:"omitempty,gte=0"`
	Specialization    *string `json:"specialization" validate:"omitempty,max=100"`
	Club              string  `json:"club" validate:"omitempty,max=100"`
	ClubFrom          string  `json:"club_from" validate:"omitempty,datetime=2006-01-02"`
}

type CoachDetails struct {
	models.Coach
	Affiliations models.AffiliationSummary `json:"affiliations"`
}

type coachService struct {
	tx           repositories.Transactor
	coachRepo    repositories.CoachRepository
	trainingRepo repositories.TrainingRepository
	placeRepo    repositories.PlaceRepository
	affiliations clubAffiliations
	logger       *slog.Logger
}

func NewCoachService(
	tx repositories.Transactor,
	coachRepo repositories.CoachRepository,
	trainingRepo repositories.TrainingRepository,
	clubRepo repositories.ClubRepository,
	placeRepo repositories.PlaceRepository,
	coachingRepo repositories.AffiliationRepository,
	policy ledger.RejoinPolicy,
	logger *slog.Logger,
) CoachService {
	return &coachService{
		tx:           tx,
		coachRepo:    coachRepo,
		trainingRepo: trainingRepo,
		placeRepo:    placeRepo,
		affiliations: newClubAffiliations(coachingRepo, clubRepo, policy, logger),
		logger:       logger,
	}
}

func (in CoachInput) toCoach(id int) (*models.Coach, error) {
	person, err := in.PersonInput.toPerson(id)
	if err != nil {
		return nil, err
	}
	return &models.Coach{
		Person:            person,
		YearsOfExperience: in.YearsOfExperience,
		Specialization:    in.Specialization,
	}, nil
}

func (s *coachService) CreateCoach(ctx context.Context, input CoachInput) (*CoachDetails, error) {
	coach, err := input.toCoach(0)
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
		if err := s.coachRepo.WithTx(exec).Create(ctx, coach); err != nil {
			return translatePersonError(err)
		}
		if input.Club == "" {
			return nil
		}
		club, err := s.affiliations.clubByName(ctx, exec, input.Club)
		if err != nil {
			return err
		}
		return s.affiliations.ledger(exec).Join(ctx, coach.ID, club.ID, dateOrToday(from))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coach: %w", err)
	}
	return s.GetCoach(ctx, coach.ID)
}

func (s *coachService) GetCoach(ctx context.Context, id int) (*CoachDetails, error) {
	coach, err := s.coachRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach %d: %w", id, err)
	}
	summary, err := s.affiliations.summary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get affiliations of coach %d: %w", id, err)
	}
	return &CoachDetails{Coach: *coach, Affiliations: summary}, nil
}

func (s *coachService) ListCoaches(ctx context.Context, filter models.PersonFilter) ([]CoachDetails, error) {
	coaches, err := s.coachRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	ids := make([]int, len(coaches))
	for i, c := range coaches {
		ids[i] = c.ID
	}
	summaries, err := s.affiliations.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]CoachDetails, len(coaches))
	for i, c := range coaches {
		out[i] = CoachDetails{Coach: c, Affiliations: summaries[c.ID]}
	}
	return out, nil
}

func (s *coachService) UpdateCoach(ctx context.Context, id int, input CoachInput) (*CoachDetails, error) {
	coach, err := input.toCoach(id)
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
		if err := s.coachRepo.WithTx(exec).Update(ctx, coach); err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return translatePersonError(err)
		}
		if input.Club == "" {
			return nil
		}
		return s.affiliations.assign(ctx, exec, id, input.Club, from)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update coach %d: %w", id, err)
	}
	return s.GetCoach(ctx, id)
}

// DeleteCoach removes the coach with their training sessions and club affiliations.
func (s *coachService) DeleteCoach(ctx context.Context, id int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		coachRepo := s.coachRepo.WithTx(exec)
		if _, err := coachRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		if err := s.trainingRepo.WithTx(exec).DeleteByCoach(ctx, id); err != nil {
			return fmt.Errorf("failed to delete trainings: %w", err)
		}
		if err := s.affiliations.repo.WithTx(exec).DeleteByPerson(ctx, id); err != nil {
			return fmt.Errorf("failed to delete affiliations: %w", err)
		}
		if err := coachRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCoachNotFound) {
			return ErrCoachNotFound
		}
		return fmt.Errorf("failed to delete coach %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "coach deleted", slog.Int("coach_id", id))
	return nil
}

func (s *coachService) TransferCoach(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error) {
	if input.Club == "" {
		return nil, fmt.Errorf("%w: club is required", ErrValidationFailed)
	}
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetCoach(ctx, id); err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.affiliations.transfer(ctx, exec, id, input.Club, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer coach %d: %w", id, err)
	}
	return s.GetAffiliations(ctx, id)
}

func (s *coachService) TerminateCoach(ctx context.Context, id int, input AffiliationChangeInput) (*models.AffiliationSummary, error) {
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetCoach(ctx, id); err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.affiliations.terminate(ctx, exec, id, input.Club, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to terminate affiliation of coach %d: %w", id, err)
	}
	return s.GetAffiliations(ctx, id)
}

func (s *coachService) GetAffiliations(ctx context.Context, id int) (*models.AffiliationSummary, error) {
	details, err := s.GetCoach(ctx, id)
	if err != nil {
		return nil, err
	}
	return &details.Affiliations, nil
}
