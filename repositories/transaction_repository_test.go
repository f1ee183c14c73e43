package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/models"
)

func TestTransactionRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTransactionRepository(db)
	at := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)
	personID := 3

	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(1, 3, at, 45.5, models.PaymentCash, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	tr := &models.Transaction{ClubID: 1, PersonID: &personID, Timestamp: at, Price: 45.5, PaymentMethod: models.PaymentCash}
	err := repo.Create(context.Background(), tr)

	require.NoError(t, err)
	assert.Equal(t, 11, tr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_CreateMapsForeignKeys(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"transactions_club_id_fkey", ErrClubNotFound},
		{"transactions_person_id_fkey", ErrTransactionInvalidPerson},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostgresTransactionRepository(db)

			mock.ExpectQuery(`INSERT INTO transactions`).
				WillReturnError(&pq.Error{Code: "23503", Constraint: tt.constraint})

			err := repo.Create(context.Background(), &models.Transaction{ClubID: 1})

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_ListByClubKeepsAnonymousRows(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTransactionRepository(db)
	at := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "club_id", "person_id", "transaction_timestamp", "price", "payment_method", "description"}).
		AddRow(12, 1, 3, at, 60.0, "CREDIT_CARD", "membership").
		AddRow(11, 1, nil, at.Add(-time.Hour), 45.5, "CASH", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE club_id = $1")).WithArgs(1).WillReturnRows(rows)

	list, err := repo.ListByClub(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].PersonID)
	assert.Equal(t, 3, *list[0].PersonID)
	assert.Equal(t, models.PaymentCreditCard, list[0].PaymentMethod)
	assert.Nil(t, list[1].PersonID)
	assert.Nil(t, list[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_DeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTransactionRepository(db)

	mock.ExpectExec(`DELETE FROM transactions`).WithArgs(99).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
