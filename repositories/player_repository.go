package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerRankConflict = errors.New("player rank is already taken")
)

// PlayerRepository writes the persons and players rows together; Create, Update and Delete
// belong inside a transaction.
type PlayerRepository interface {
	WithTx(exec SQLExecutor) PlayerRepository
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error)
	List(ctx context.Context, filter models.PersonFilter) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) WithTx(exec SQLExecutor) PlayerRepository {
	return &postgresPlayerRepository{db: r.db, exec: exec}
}

func (r *postgresPlayerRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectPlayerSQL = `
	SELECT pe.id, pe.oib, pe.name, pe.surname, pe.date_of_birth, pe.sex, pe.zip_code, pl.name,
		p.height, p.weight, p.preferred_hand, p.rank, p.injury
	FROM players p
	JOIN persons pe ON pe.id = p.person_id
	LEFT JOIN places pl ON pl.zip_code = pe.zip_code`

func scanPlayer(row rowScanner, p *models.Player) error {
	return scanPerson(row, &p.Person, &p.Height, &p.Weight, &p.PreferredHand, &p.Rank, &p.Injury)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	exec := r.getExecutor()
	if err := insertPerson(ctx, exec, &player.Person); err != nil {
		return err
	}
	query := `
		INSERT INTO players (person_id, height, weight, preferred_hand, rank, injury)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := exec.ExecContext(ctx, query,
		player.ID, player.Height, player.Weight, player.PreferredHand, player.Rank, player.Injury,
	)
	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Player, error) {
	var p models.Player
	err := scanPlayer(r.getExecutor().QueryRowContext(ctx, selectPlayerSQL+" WHERE "+where, arg), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	return r.findOne(ctx, "p.person_id = $1", id)
}

func (r *postgresPlayerRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	return r.findOne(ctx, "pe.oib = $1", nationalID)
}

func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error) {
	players := make(map[int]*models.Player, len(ids))
	if len(ids) == 0 {
		return players, nil
	}

	rows, err := r.getExecutor().QueryContext(ctx, selectPlayerSQL+" WHERE p.person_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Player{}
		if scanErr := scanPlayer(rows, p); scanErr != nil {
			return nil, scanErr
		}
		players[p.ID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Player, error) {
	query, args := personFilterSQL(filter, selectPlayerSQL+" WHERE 1=1", nil)

	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := scanPlayer(rows, &p); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	exec := r.getExecutor()
	if err := updatePerson(ctx, exec, &player.Person); err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	query := `
		UPDATE players
		SET height = $1, weight = $2, preferred_hand = $3, rank = $4, injury = $5
		WHERE person_id = $6`
	result, err := exec.ExecContext(ctx, query,
		player.Height, player.Weight, player.PreferredHand, player.Rank, player.Injury, player.ID,
	)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// Delete removes the person row; the players row follows by cascade.
func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	err := deletePerson(ctx, r.getExecutor(), id, "players")
	if errors.Is(err, ErrPersonNotFound) {
		return ErrPlayerNotFound
	}
	return err
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "players_rank_key") {
		return ErrPlayerRankConflict
	}
	return handlePersonError(err)
}
