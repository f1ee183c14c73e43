package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtNameConflict = errors.New("club already has a court with this name")
	ErrCourtInUse        = errors.New("court has matches")
	ErrCourtInvalidClub  = errors.New("invalid club reference")
)

type CourtRepository interface {
	WithTx(exec SQLExecutor) CourtRepository
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Court, error)
	Update(ctx context.Context, court *models.Court) error
	Delete(ctx context.Context, id int) error
	DeleteByClub(ctx context.Context, clubID int) error
}

type postgresCourtRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) WithTx(exec SQLExecutor) CourtRepository {
	return &postgresCourtRepository{db: r.db, exec: exec}
}

func (r *postgresCourtRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `INSERT INTO courts (club_id, name, surface) VALUES ($1, $2, $3) RETURNING id`
	err := r.getExecutor().QueryRowContext(ctx, query, court.ClubID, court.Name, court.Surface).Scan(&court.ID)
	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT id, club_id, name, surface FROM courts WHERE id = $1`

	var c models.Court
	err := r.getExecutor().QueryRowContext(ctx, query, id).Scan(&c.ID, &c.ClubID, &c.Name, &c.Surface)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCourtRepository) ListByClub(ctx context.Context, clubID int) ([]models.Court, error) {
	query := `SELECT id, club_id, name, surface FROM courts WHERE club_id = $1 ORDER BY name ASC`

	rows, err := r.getExecutor().QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var c models.Court
		if scanErr := rows.Scan(&c.ID, &c.ClubID, &c.Name, &c.Surface); scanErr != nil {
			return nil, scanErr
		}
		courts = append(courts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return courts, nil
}

func (r *postgresCourtRepository) Update(ctx context.Context, court *models.Court) error {
	query := `UPDATE courts SET name = $1, surface = $2 WHERE id = $3 AND club_id = $4`
	result, err := r.getExecutor().ExecContext(ctx, query, court.Name, court.Surface, court.ID, court.ClubID)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return r.handleCourtError(err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}

func (r *postgresCourtRepository) DeleteByClub(ctx context.Context, clubID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM courts WHERE club_id = $1`, clubID)
	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "courts_club_id_name_key") {
		return ErrCourtNameConflict
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "courts_club_id_fkey" {
			return ErrCourtInvalidClub
		}
		return ErrCourtInUse
	}
	return err
}
