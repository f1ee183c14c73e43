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

type TransactionService interface {
	CreateTransaction(ctx context.Context, clubID int, input TransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, clubID, transactionID int) (*models.Transaction, error)
	ListTransactions(ctx context.Context, clubID int) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, clubID, transactionID int, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, clubID, transactionID int) error
}

// TransactionInput names the paying person by national id.
type TransactionInput struct {
	NationalID    string    `json:"national_id" validate:"required,numeric,len=11"`
	Timestamp     time.Time `json:"transaction_timestamp" validate:"required"`
	Price         *float64  `json:"price" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=CASH CREDIT_CARD"`
	Description   *string   `json:"description" validate:"omitempty,max=200"`
}

type transactionService struct {
	transactionRepo repositories.TransactionRepository
	clubRepo        repositories.ClubRepository
	personRepo      repositories.PersonRepository
}

func NewTransactionService(
	transactionRepo repositories.TransactionRepository,
	clubRepo repositories.ClubRepository,
	personRepo repositories.PersonRepository,
) TransactionService {
	return &transactionService{transactionRepo: transactionRepo, clubRepo: clubRepo, personRepo: personRepo}
}

func (s *transactionService) CreateTransaction(ctx context.Context, clubID int, input TransactionInput) (*models.Transaction, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	transaction := &models.Transaction{ClubID: clubID}
	if err := s.fill(ctx, transaction, input); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", translateTransactionError(err))
	}
	return s.GetTransaction(ctx, clubID, transaction.ID)
}

func (s *transactionService) GetTransaction(ctx context.Context, clubID, transactionID int) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, translateTransactionError(err)
	}
	if transaction.ClubID != clubID {
		return nil, ErrTransactionNotFound
	}
	if err := s.attachPersons(ctx, []*models.Transaction{transaction}); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, clubID int) ([]models.Transaction, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	transactions, err := s.transactionRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of club %d: %w", clubID, err)
	}
	ptrs := make([]*models.Transaction, len(transactions))
	for i := range transactions {
		ptrs[i] = &transactions[i]
	}
	if err := s.attachPersons(ctx, ptrs); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, clubID, transactionID int, input TransactionInput) (*models.Transaction, error) {
	transaction := &models.Transaction{ID: transactionID, ClubID: clubID}
	if err := s.fill(ctx, transaction, input); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to update transaction %d: %w", transactionID, translateTransactionError(err))
	}
	return s.GetTransaction(ctx, clubID, transactionID)
}

func (s *transactionService) DeleteTransaction(ctx context.Context, clubID, transactionID int) error {
	if _, err := s.GetTransaction(ctx, clubID, transactionID); err != nil {
		return err
	}
	return translateTransactionError(s.transactionRepo.Delete(ctx, transactionID))
}

func (s *transactionService) fill(ctx context.Context, transaction *models.Transaction, input TransactionInput) error {
	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(input.PaymentMethod)))
	if !method.Valid() {
		return fmt.Errorf("%w: payment_method must be CASH or CREDIT_CARD", ErrValidationFailed)
	}
	if input.Price == nil {
		return fmt.Errorf("%w: price is required", ErrValidationFailed)
	}
	if input.Timestamp.IsZero() {
		return fmt.Errorf("%w: transaction_timestamp is required", ErrValidationFailed)
	}

	nid := strings.TrimSpace(input.NationalID)
	person, err := s.personRepo.GetByNationalID(ctx, nid)
	if err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return fmt.Errorf("%w: person %s", ErrUnknownReference, nid)
		}
		return fmt.Errorf("failed to look up person %s: %w", nid, err)
	}

	transaction.PersonID = &person.ID
	transaction.Timestamp = input.Timestamp
	transaction.Price = *input.Price
	transaction.PaymentMethod = method
	transaction.Description = input.Description
	return nil
}

func (s *transactionService) attachPersons(ctx context.Context, transactions []*models.Transaction) error {
	ids := make([]int, 0, len(transactions))
	for _, t := range transactions {
		if t.PersonID != nil {
			ids = append(ids, *t.PersonID)
		}
	}
	persons, err := s.personRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load paying persons: %w", err)
	}
	byID := make(map[int]models.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}
	for _, t := range transactions {
		if t.PersonID == nil {
			continue
		}
		if p, ok := byID[*t.PersonID]; ok {
			t.Person = &p
		}
	}
	return nil
}

func translateTransactionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrTransactionInvalidPerson):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}
	return err
}
