package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
)

var ErrCoachNotFound = errors.New("coach not found")

type CoachRepository interface {
	WithTx(exec SQLExecutor) CoachRepository
	Create(ctx context.Context, coach *models.Coach) error
	GetByID(ctx context.Context, id int) (*models.Coach, error)
	List(ctx context.Context, filter models.PersonFilter) ([]models.Coach, error)
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, id int) error
}

type postgresCoachRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresCoachRepository(db *sql.DB) CoachRepository {
	return &postgresCoachRepository{db: db}
}

func (r *postgresCoachRepository) WithTx(exec SQLExecutor) CoachRepository {
	return &postgresCoachRepository{db: r.db, exec: exec}
}

func (r *postgresCoachRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectCoachSQL = `
	SELECT pe.id, pe.oib, pe.name, pe.surname, pe.date_of_birth, pe.sex, pe.zip_code, pl.name,
		c.years_of_experience, c.specialization
	FROM coaches c
	JOIN persons pe ON pe.id = c.person_id
	LEFT JOIN places pl ON pl.zip_code = pe.zip_code`

func scanCoach(row rowScanner, c *models.Coach) error {
	return scanPerson(row, &c.Person, &c.YearsOfExperience, &c.Specialization)
}

func (r *postgresCoachRepository) Create(ctx context.Context, coach *models.Coach) error {
	exec := r.getExecutor()
	if err := insertPerson(ctx, exec, &coach.Person); err != nil {
		return err
	}
	query := `INSERT INTO coaches (person_id, years_of_experience, specialization) VALUES ($1, $2, $3)`
	_, err := exec.ExecContext(ctx, query, coach.ID, coach.YearsOfExperience, coach.Specialization)
	return handlePersonError(err)
}

func (r *postgresCoachRepository) GetByID(ctx context.Context, id int) (*models.Coach, error) {
	var c models.Coach
	err := scanCoach(r.getExecutor().QueryRowContext(ctx, selectCoachSQL+" WHERE c.person_id = $1", id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to find coach: %w", err)
	}
	return &c, nil
}

func (r *postgresCoachRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Coach, error) {
	query, args := personFilterSQL(filter, selectCoachSQL+" WHERE 1=1", nil)

	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	for rows.Next() {
		var c models.Coach
		if scanErr := scanCoach(rows, &c); scanErr != nil {
			return nil, scanErr
		}
		coaches = append(coaches, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *postgresCoachRepository) Update(ctx context.Context, coach *models.Coach) error {
	exec := r.getExecutor()
	if err := updatePerson(ctx, exec, &coach.Person); err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return ErrCoachNotFound
		}
		return err
	}
	query := `UPDATE coaches SET years_of_experience = $1, specialization = $2 WHERE person_id = $3`
	result, err := exec.ExecContext(ctx, query, coach.YearsOfExperience, coach.Specialization, coach.ID)
	if err != nil {
		return handlePersonError(err)
	}
	return checkAffectedRows(result, ErrCoachNotFound)
}

func (r *postgresCoachRepository) Delete(ctx context.Context, id int) error {
	err := deletePerson(ctx, r.getExecutor(), id, "coaches")
	if errors.Is(err, ErrPersonNotFound) {
		return ErrCoachNotFound
	}
	return err
}
