package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
)

var ErrPlaceNotFound = errors.New("place not found")

// PlaceRepository stores places keyed by zip code. A zip code that exists keeps its first name.
type PlaceRepository interface {
	WithTx(exec SQLExecutor) PlaceRepository
	Ensure(ctx context.Context, place models.Place) error
	GetByZipCode(ctx context.Context, zipCode int) (*models.Place, error)
}

type postgresPlaceRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresPlaceRepository(db *sql.DB) PlaceRepository {
	return &postgresPlaceRepository{db: db}
}

func (r *postgresPlaceRepository) WithTx(exec SQLExecutor) PlaceRepository {
	return &postgresPlaceRepository{db: r.db, exec: exec}
}

func (r *postgresPlaceRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

func (r *postgresPlaceRepository) Ensure(ctx context.Context, place models.Place) error {
	query := `INSERT INTO places (zip_code, name) VALUES ($1, $2) ON CONFLICT (zip_code) DO NOTHING`
	_, err := r.getExecutor().ExecContext(ctx, query, place.ZipCode, place.Name)
	return err
}

func (r *postgresPlaceRepository) GetByZipCode(ctx context.Context, zipCode int) (*models.Place, error) {
	query := `SELECT zip_code, name FROM places WHERE zip_code = $1`

	var p models.Place
	err := r.getExecutor().QueryRowContext(ctx, query, zipCode).Scan(&p.ZipCode, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	return &p, nil
}
