package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentNameConflict    = errors.New("tournament name conflict")
	ErrTournamentInUse           = errors.New("tournament has matches")
	ErrTournamentInvalidClub     = errors.New("invalid club reference")
	ErrTournamentInvalidCategory = errors.New("invalid category reference")
)

type ListTournamentsFilter struct {
	ClubID       *int
	CategoryType *models.CategoryType
	Limit        int
	Offset       int
}

type TournamentRepository interface {
	WithTx(exec SQLExecutor) TournamentRepository
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) WithTx(exec SQLExecutor) TournamentRepository {
	return &postgresTournamentRepository{db: r.db, exec: exec}
}

func (r *postgresTournamentRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectTournamentSQL = `
	SELECT t.id, t.name, t.club_id, t.category_id, c.name, cat.type, cat.age_limit, cat.sex_limit
	FROM tournaments t
	JOIN clubs c ON c.id = t.club_id
	JOIN categories cat ON cat.id = t.category_id`

// scanTournament fills the club reference and the category as well.
func scanTournament(row rowScanner, t *models.Tournament) error {
	club := &models.Club{}
	category := &models.Category{}
	if err := row.Scan(
		&t.ID, &t.Name, &t.ClubID, &t.CategoryID, &club.Name, &category.Type, &category.AgeLimit, &category.SexLimit,
	); err != nil {
		return err
	}
	club.ID = t.ClubID
	category.ID = t.CategoryID
	t.Club = club
	t.Category = category
	return nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `INSERT INTO tournaments (name, club_id, category_id) VALUES ($1, $2, $3) RETURNING id`
	err := r.getExecutor().QueryRowContext(ctx, query, t.Name, t.ClubID, t.CategoryID).Scan(&t.ID)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var t models.Tournament
	err := scanTournament(r.getExecutor().QueryRowContext(ctx, selectTournamentSQL+" WHERE t.id = $1", id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := selectTournamentSQL + " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	if filter.ClubID != nil {
		query += fmt.Sprintf(" AND t.club_id = $%d", argID)
		args = append(args, *filter.ClubID)
		argID++
	}
	if filter.CategoryType != nil {
		query += fmt.Sprintf(" AND cat.type = $%d", argID)
		args = append(args, *filter.CategoryType)
		argID++
	}

	query += " ORDER BY t.name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `UPDATE tournaments SET name = $1, club_id = $2, category_id = $3 WHERE id = $4`
	result, err := r.getExecutor().ExecContext(ctx, query, t.Name, t.ClubID, t.CategoryID, t.ID)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "tournaments_name_key") {
		return ErrTournamentNameConflict
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		switch constraint {
		case "tournaments_club_id_fkey":
			return ErrTournamentInvalidClub
		case "tournaments_category_id_fkey":
			return ErrTournamentInvalidCategory
		default:
			return ErrTournamentInUse
		}
	}
	return err
}
