package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type TrainingService interface {
	CreateTraining(ctx context.Context, coachID int, input TrainingInput) (*models.Training, error)
	GetTraining(ctx context.Context, coachID, trainingID int) (*models.Training, error)
	ListTrainings(ctx context.Context, coachID int) ([]models.Training, error)
	UpdateTraining(ctx context.Context, coachID, trainingID int, input TrainingInput) (*models.Training, error)
	DeleteTraining(ctx context.Context, coachID, trainingID int) error
}

// TrainingInput lists trainees by national id.
type TrainingInput struct {
	Timestamp   time.Time `json:"training_timestamp" validate:"required"`
	Duration    *string   `json:"duration" validate:"omitempty,max=50"`
	Description *string   `json:"description" validate:"omitempty,max=200"`
	Notes       *string   `json:"notes" validate:"omitempty,max=500"`
	Players     []string  `json:"players" validate:"dive,numeric,len=11"`
}

type trainingService struct {
	tx           repositories.Transactor
	trainingRepo repositories.TrainingRepository
	coachRepo    repositories.CoachRepository
	playerRepo   repositories.PlayerRepository
}

func NewTrainingService(
	tx repositories.Transactor,
	trainingRepo repositories.TrainingRepository,
	coachRepo repositories.CoachRepository,
	playerRepo repositories.PlayerRepository,
) TrainingService {
	return &trainingService{tx: tx, trainingRepo: trainingRepo, coachRepo: coachRepo, playerRepo: playerRepo}
}

func (s *trainingService) coach(ctx context.Context, coachID int) (*models.Coach, error) {
	coach, err := s.coachRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, translateTrainingError(err)
	}
	return coach, nil
}

func (s *trainingService) CreateTraining(ctx context.Context, coachID int, input TrainingInput) (*models.Training, error) {
	if _, err := s.coach(ctx, coachID); err != nil {
		return nil, err
	}
	training := &models.Training{CoachID: coachID}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fill(ctx, exec, training, input); err != nil {
			return err
		}
		return translateTrainingError(s.trainingRepo.WithTx(exec).Create(ctx, training))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create training: %w", err)
	}
	return s.GetTraining(ctx, coachID, training.ID)
}

func (s *trainingService) GetTraining(ctx context.Context, coachID, trainingID int) (*models.Training, error) {
	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		return nil, translateTrainingError(err)
	}
	if training.CoachID != coachID {
		return nil, ErrTrainingNotFound
	}
	coach, err := s.coach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if err := s.label(ctx, coach, []*models.Training{training}); err != nil {
		return nil, err
	}
	return training, nil
}

func (s *trainingService) ListTrainings(ctx context.Context, coachID int) ([]models.Training, error) {
	coach, err := s.coach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	trainings, err := s.trainingRepo.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings of coach %d: %w", coachID, err)
	}
	ptrs := make([]*models.Training, len(trainings))
	for i := range trainings {
		ptrs[i] = &trainings[i]
	}
	if err := s.label(ctx, coach, ptrs); err != nil {
		return nil, err
	}
	return trainings, nil
}

func (s *trainingService) UpdateTraining(ctx context.Context, coachID, trainingID int, input TrainingInput) (*models.Training, error) {
	training := &models.Training{ID: trainingID, CoachID: coachID}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fill(ctx, exec, training, input); err != nil {
			return err
		}
		return translateTrainingError(s.trainingRepo.WithTx(exec).Update(ctx, training))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update training %d: %w", trainingID, err)
	}
	return s.GetTraining(ctx, coachID, trainingID)
}

func (s *trainingService) DeleteTraining(ctx context.Context, coachID, trainingID int) error {
	if _, err := s.GetTraining(ctx, coachID, trainingID); err != nil {
		return err
	}
	return translateTrainingError(s.trainingRepo.Delete(ctx, trainingID))
}

func (s *trainingService) fill(ctx context.Context, exec repositories.SQLExecutor, training *models.Training, input TrainingInput) error {
	if input.Timestamp.IsZero() {
		return fmt.Errorf("%w: training_timestamp is required", ErrValidationFailed)
	}
	training.Timestamp = input.Timestamp
	training.Duration = input.Duration
	training.Description = input.Description
	training.Notes = input.Notes

	playerRepo := s.playerRepo.WithTx(exec)
	seen := make(map[int]bool, len(input.Players))
	training.PlayerIDs = make([]int, 0, len(input.Players))
	for _, nid := range input.Players {
		p, err := playerRepo.GetByNationalID(ctx, strings.TrimSpace(nid))
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: player %s", ErrUnknownReference, nid)
			}
			return fmt.Errorf("failed to look up trainee %s: %w", nid, err)
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			training.PlayerIDs = append(training.PlayerIDs, p.ID)
		}
	}
	return nil
}

func (s *trainingService) label(ctx context.Context, coach *models.Coach, trainings []*models.Training) error {
	ids := make([]int, 0)
	for _, t := range trainings {
		ids = append(ids, t.PlayerIDs...)
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load trainees: %w", err)
	}
	for _, t := range trainings {
		t.Coach = coach.Label()
		t.Players = make([]string, 0, len(t.PlayerIDs))
		for _, id := range t.PlayerIDs {
			if p, ok := players[id]; ok {
				t.Players = append(t.Players, p.Label())
			}
		}
	}
	return nil
}

func translateTrainingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTrainingNotFound):
		return ErrTrainingNotFound
	case errors.Is(err, repositories.ErrCoachNotFound):
		return ErrCoachNotFound
	case errors.Is(err, repositories.ErrTrainingInvalidPlayer):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}
	return err
}
