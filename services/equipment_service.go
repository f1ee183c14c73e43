package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type EquipmentService interface {
	AddEquipment(ctx context.Context, clubID int, input EquipmentInput) (*models.ClubEquipment, error)
	GetEquipment(ctx context.Context, clubID, equipmentID int) (*models.ClubEquipment, error)
	ListEquipment(ctx context.Context, clubID int) ([]models.ClubEquipment, error)
	UpdateEquipment(ctx context.Context, clubID, equipmentID int, input EquipmentInput) (*models.ClubEquipment, error)
	RemoveEquipment(ctx context.Context, clubID, equipmentID int) error
}

// EquipmentInput describes catalogue equipment by name; quantity belongs to the owning club.
type EquipmentInput struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" validate:"omitempty,gte=0"`
}

type equipmentService struct {
	tx            repositories.Transactor
	equipmentRepo repositories.EquipmentRepository
	clubRepo      repositories.ClubRepository
}

func NewEquipmentService(tx repositories.Transactor, equipmentRepo repositories.EquipmentRepository, clubRepo repositories.ClubRepository) EquipmentService {
	return &equipmentService{tx: tx, equipmentRepo: equipmentRepo, clubRepo: clubRepo}
}

func (s *equipmentService) AddEquipment(ctx context.Context, clubID int, input EquipmentInput) (*models.ClubEquipment, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	var owned *models.ClubEquipment
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		repo := s.equipmentRepo.WithTx(exec)
		eq := &models.Equipment{Name: strings.TrimSpace(input.Name), Price: input.Price}
		if err := repo.FindOrCreate(ctx, eq); err != nil {
			return fmt.Errorf("failed to find or create equipment: %w", err)
		}
		owned = &models.ClubEquipment{Equipment: *eq, ClubID: clubID, Quantity: input.Quantity}
		return translateEquipmentError(repo.AddToClub(ctx, owned))
	})
	if err != nil {
		return nil, err
	}
	return owned, nil
}

func (s *equipmentService) GetEquipment(ctx context.Context, clubID, equipmentID int) (*models.ClubEquipment, error) {
	ce, err := s.equipmentRepo.GetForClub(ctx, clubID, equipmentID)
	if err != nil {
		return nil, translateEquipmentError(err)
	}
	return ce, nil
}

func (s *equipmentService) ListEquipment(ctx context.Context, clubID int) ([]models.ClubEquipment, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	list, err := s.equipmentRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment of club %d: %w", clubID, err)
	}
	return list, nil
}

// UpdateEquipment changes the catalogue price and the club's quantity. The name identifies
// the catalogue entry and cannot be changed here.
func (s *equipmentService) UpdateEquipment(ctx context.Context, clubID, equipmentID int, input EquipmentInput) (*models.ClubEquipment, error) {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		repo := s.equipmentRepo.WithTx(exec)
		current, err := repo.GetForClub(ctx, clubID, equipmentID)
		if err != nil {
			return translateEquipmentError(err)
		}
		if !strings.EqualFold(current.Name, strings.TrimSpace(input.Name)) {
			return fmt.Errorf("%w: equipment name cannot be changed", ErrValidationFailed)
		}
		if input.Price != nil {
			if err := repo.UpdateCatalogue(ctx, &models.Equipment{ID: equipmentID, Name: current.Name, Price: input.Price}); err != nil {
				return translateEquipmentError(err)
			}
		}
		return translateEquipmentError(repo.UpdateQuantity(ctx, clubID, equipmentID, input.Quantity))
	})
	if err != nil {
		return nil, err
	}
	return s.GetEquipment(ctx, clubID, equipmentID)
}

func (s *equipmentService) RemoveEquipment(ctx context.Context, clubID, equipmentID int) error {
	return translateEquipmentError(s.equipmentRepo.RemoveFromClub(ctx, clubID, equipmentID))
}

func translateEquipmentError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrEquipmentNotFound), errors.Is(err, repositories.ErrClubEquipmentNotFound):
		return ErrEquipmentNotFound
	case errors.Is(err, repositories.ErrClubEquipmentConflict):
		return ErrEquipmentConflict
	}
	return err
}
