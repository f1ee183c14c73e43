package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestAffiliationRepository_ListByPerson(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	rows := sqlmock.NewRows([]string{"person_id", "club_id", "name", "from_date", "to_date"}).
		AddRow(7, 1, "TK Mladost", day("2020-01-01"), day("2022-06-01")).
		AddRow(7, 2, "TK Medveščak", day("2022-06-01"), nil)

	mock.ExpectQuery(`FROM represents a\s+JOIN clubs c`).
		WithArgs(7).
		WillReturnRows(rows)

	affiliations, err := repo.ListByPerson(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, affiliations, 2)
	assert.Equal(t, "TK Mladost", affiliations[0].ClubName)
	require.NotNil(t, affiliations[0].To)
	assert.Equal(t, day("2022-06-01"), *affiliations[0].To)
	assert.True(t, affiliations[1].IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_KindSelectsTable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationCoaches)

	mock.ExpectExec(`INSERT INTO holds_training_sessions`).
		WithArgs(3, 1, day("2021-01-01"), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.Affiliation{PersonID: 3, ClubID: 1, From: day("2021-01-01")})

	require.NoError(t, err)
	assert.Equal(t, models.AffiliationCoaches, repo.Kind())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_InsertSecondOpenRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	mock.ExpectExec(`INSERT INTO represents`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "represents_one_open_idx"})

	err := repo.Insert(context.Background(), &models.Affiliation{PersonID: 7, ClubID: 3, From: day("2021-01-01")})

	assert.ErrorIs(t, err, ErrAffiliationConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_UpdateRangeMissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	to := day("2022-01-01")
	mock.ExpectExec(`UPDATE represents SET from_date`).
		WithArgs(day("2020-01-01"), to, 7, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRange(context.Background(), &models.Affiliation{PersonID: 7, ClubID: 9, From: day("2020-01-01"), To: &to})

	assert.ErrorIs(t, err, ErrAffiliationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_ListByPersons(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	rows := sqlmock.NewRows([]string{"person_id", "club_id", "name", "from_date", "to_date"}).
		AddRow(7, 1, "TK Mladost", day("2020-01-01"), nil).
		AddRow(8, 1, "TK Mladost", day("2019-01-01"), day("2020-01-01")).
		AddRow(8, 2, "TK Split", day("2020-01-01"), nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.person_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	byPerson, err := repo.ListByPersons(context.Background(), []int{7, 8})

	require.NoError(t, err)
	assert.Len(t, byPerson[7], 1)
	assert.Len(t, byPerson[8], 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_ListByPersonsEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	byPerson, err := repo.ListByPersons(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, byPerson)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAffiliationRepository_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPostgresAffiliationRepository(nil, models.AffiliationKind("sponsors"))
	})
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock := setupMockDB(t)
	tx := NewTransactor(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := NewPostgresAffiliationRepository(db, models.AffiliationRepresents)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE represents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO represents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	to := day("2022-06-01")
	err := tx.WithinTx(context.Background(), func(exec SQLExecutor) error {
		txRepo := repo.WithTx(exec)
		if err := txRepo.UpdateRange(context.Background(), &models.Affiliation{PersonID: 7, ClubID: 1, From: day("2020-01-01"), To: &to}); err != nil {
			return err
		}
		return txRepo.Insert(context.Background(), &models.Affiliation{PersonID: 7, ClubID: 2, From: to})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	tx := NewTransactor(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tx.WithinTx(context.Background(), func(SQLExecutor) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
