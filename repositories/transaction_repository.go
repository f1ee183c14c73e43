package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionInvalidPerson = errors.New("invalid paying person reference")
)

// TransactionRepository stores a club's finance transactions.
type TransactionRepository interface {
	WithTx(exec SQLExecutor) TransactionRepository
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id int) (*models.Transaction, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Transaction, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, id int) error
	DeleteByClub(ctx context.Context, clubID int) error
}

type postgresTransactionRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresTransactionRepository(db *sql.DB) TransactionRepository {
	return &postgresTransactionRepository{db: db}
}

func (r *postgresTransactionRepository) WithTx(exec SQLExecutor) TransactionRepository {
	return &postgresTransactionRepository{db: r.db, exec: exec}
}

func (r *postgresTransactionRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectTransactionSQL = `
	SELECT id, club_id, person_id, transaction_timestamp, price, payment_method, description
	FROM transactions`

func scanTransaction(row rowScanner, t *models.Transaction) error {
	return row.Scan(&t.ID, &t.ClubID, &t.PersonID, &t.Timestamp, &t.Price, &t.PaymentMethod, &t.Description)
}

func handleTransactionError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "transactions_club_id_fkey" {
			return ErrClubNotFound
		}
		return ErrTransactionInvalidPerson
	}
	return err
}

func (r *postgresTransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (club_id, person_id, transaction_timestamp, price, payment_method, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.getExecutor().QueryRowContext(ctx, query,
		t.ClubID, t.PersonID, t.Timestamp, t.Price, t.PaymentMethod, t.Description,
	).Scan(&t.ID)
	return handleTransactionError(err)
}

func (r *postgresTransactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	var t models.Transaction
	err := scanTransaction(r.getExecutor().QueryRowContext(ctx, selectTransactionSQL+" WHERE id = $1", id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &t, nil
}

func (r *postgresTransactionRepository) ListByClub(ctx context.Context, clubID int) ([]models.Transaction, error) {
	query := selectTransactionSQL + " WHERE club_id = $1 ORDER BY transaction_timestamp DESC, id DESC"
	rows, err := r.getExecutor().QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if scanErr := scanTransaction(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Update never moves a transaction to another club.
func (r *postgresTransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET person_id = $1, transaction_timestamp = $2, price = $3, payment_method = $4, description = $5
		WHERE id = $6 AND club_id = $7`
	result, err := r.getExecutor().ExecContext(ctx, query,
		t.PersonID, t.Timestamp, t.Price, t.PaymentMethod, t.Description, t.ID, t.ClubID,
	)
	if err != nil {
		return handleTransactionError(err)
	}
	return checkAffectedRows(result, ErrTransactionNotFound)
}

func (r *postgresTransactionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTransactionNotFound)
}

func (r *postgresTransactionRepository) DeleteByClub(ctx context.Context, clubID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM transactions WHERE club_id = $1`, clubID)
	return err
}
