package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/lib/pq"
)

var (
	ErrTrainingNotFound      = errors.New("training not found")
	ErrTrainingInvalidPlayer = errors.New("invalid trainee reference")
)

// TrainingRepository stores training sessions with their trainee rows. Writes touching
// trainees belong inside a transaction.
type TrainingRepository interface {
	WithTx(exec SQLExecutor) TrainingRepository
	Create(ctx context.Context, training *models.Training) error
	GetByID(ctx context.Context, id int) (*models.Training, error)
	ListByCoach(ctx context.Context, coachID int) ([]models.Training, error)
	Update(ctx context.Context, training *models.Training) error
	Delete(ctx context.Context, id int) error
	DeleteByCoach(ctx context.Context, coachID int) error
}

type postgresTrainingRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresTrainingRepository(db *sql.DB) TrainingRepository {
	return &postgresTrainingRepository{db: db}
}

func (r *postgresTrainingRepository) WithTx(exec SQLExecutor) TrainingRepository {
	return &postgresTrainingRepository{db: r.db, exec: exec}
}

func (r *postgresTrainingRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectTrainingSQL = `
	SELECT t.id, t.coach_id, t.training_timestamp, t.duration, t.description, t.notes,
		COALESCE(array_agg(tr.player_id ORDER BY tr.player_id) FILTER (WHERE tr.player_id IS NOT NULL), '{}')
	FROM trainings t
	LEFT JOIN trains tr ON tr.training_id = t.id`

func scanTraining(row rowScanner, t *models.Training) error {
	var players pq.Int64Array
	if err := row.Scan(&t.ID, &t.CoachID, &t.Timestamp, &t.Duration, &t.Description, &t.Notes, &players); err != nil {
		return err
	}
	t.PlayerIDs = make([]int, len(players))
	for i, id := range players {
		t.PlayerIDs[i] = int(id)
	}
	return nil
}

func (r *postgresTrainingRepository) Create(ctx context.Context, t *models.Training) error {
	exec := r.getExecutor()
	query := `
		INSERT INTO trainings (coach_id, training_timestamp, duration, description, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := exec.QueryRowContext(ctx, query, t.CoachID, t.Timestamp, t.Duration, t.Description, t.Notes).Scan(&t.ID)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrCoachNotFound
		}
		return err
	}
	return r.insertTrainees(ctx, exec, t.ID, t.PlayerIDs)
}

func (r *postgresTrainingRepository) insertTrainees(ctx context.Context, exec SQLExecutor, trainingID int, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO trains (training_id, player_id)
		SELECT $1, UNNEST($2::int[])
		ON CONFLICT DO NOTHING`
	if _, err := exec.ExecContext(ctx, query, trainingID, pq.Array(playerIDs)); err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrTrainingInvalidPlayer
		}
		return err
	}
	return nil
}

func (r *postgresTrainingRepository) GetByID(ctx context.Context, id int) (*models.Training, error) {
	var t models.Training
	row := r.getExecutor().QueryRowContext(ctx, selectTrainingSQL+" WHERE t.id = $1 GROUP BY t.id", id)
	if err := scanTraining(row, &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTrainingRepository) ListByCoach(ctx context.Context, coachID int) ([]models.Training, error) {
	query := selectTrainingSQL + " WHERE t.coach_id = $1 GROUP BY t.id ORDER BY t.training_timestamp DESC"
	rows, err := r.getExecutor().QueryContext(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainings := make([]models.Training, 0)
	for rows.Next() {
		var t models.Training
		if scanErr := scanTraining(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		trainings = append(trainings, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return trainings, nil
}

// Update is scoped to the training's coach and replaces the trainee list.
func (r *postgresTrainingRepository) Update(ctx context.Context, t *models.Training) error {
	exec := r.getExecutor()
	query := `
		UPDATE trainings
		SET training_timestamp = $1, duration = $2, description = $3, notes = $4
		WHERE id = $5 AND coach_id = $6`
	result, err := exec.ExecContext(ctx, query, t.Timestamp, t.Duration, t.Description, t.Notes, t.ID, t.CoachID)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrTrainingNotFound); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM trains WHERE training_id = $1`, t.ID); err != nil {
		return err
	}
	return r.insertTrainees(ctx, exec, t.ID, t.PlayerIDs)
}

func (r *postgresTrainingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTrainingNotFound)
}

func (r *postgresTrainingRepository) DeleteByCoach(ctx context.Context, coachID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM trainings WHERE coach_id = $1`, coachID)
	return err
}
