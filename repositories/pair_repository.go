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
	ErrPairNotFound      = errors.New("pair not found")
	ErrPairConflict      = errors.New("pair with these players already exists")
	ErrPairRankConflict  = errors.New("pair rank is already taken")
	ErrPairSamePlayers   = errors.New("pair needs two different players")
	ErrPairInvalidPlayer = errors.New("invalid player reference")
	ErrPairInUse         = errors.New("pair has matches")
)

type PairRepository interface {
	WithTx(exec SQLExecutor) PairRepository
	Create(ctx context.Context, pair *models.Pair) error
	GetByID(ctx context.Context, id int) (*models.Pair, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*models.Pair, error)
	FindByMembers(ctx context.Context, playerA, playerB int) (*models.Pair, error)
	List(ctx context.Context, limit, offset int) ([]models.Pair, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Pair, error)
	Update(ctx context.Context, pair *models.Pair) error
	Delete(ctx context.Context, id int) error
}

type postgresPairRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresPairRepository(db *sql.DB) PairRepository {
	return &postgresPairRepository{db: db}
}

func (r *postgresPairRepository) WithTx(exec SQLExecutor) PairRepository {
	return &postgresPairRepository{db: r.db, exec: exec}
}

func (r *postgresPairRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectPairSQL = `SELECT id, player1_id, player2_id, rank FROM pairs`

func scanPair(row rowScanner, p *models.Pair) error {
	return row.Scan(&p.ID, &p.Player1ID, &p.Player2ID, &p.Rank)
}

func (r *postgresPairRepository) Create(ctx context.Context, pair *models.Pair) error {
	query := `INSERT INTO pairs (player1_id, player2_id, rank) VALUES ($1, $2, $3) RETURNING id`
	err := r.getExecutor().QueryRowContext(ctx, query, pair.Player1ID, pair.Player2ID, pair.Rank).Scan(&pair.ID)
	return handlePairError(err)
}

func (r *postgresPairRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Pair, error) {
	var p models.Pair
	err := scanPair(r.getExecutor().QueryRowContext(ctx, query, args...), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to find pair: %w", err)
	}
	return &p, nil
}

func (r *postgresPairRepository) GetByID(ctx context.Context, id int) (*models.Pair, error) {
	return r.findOne(ctx, selectPairSQL+" WHERE id = $1", id)
}

// FindByMembers ignores member order.
func (r *postgresPairRepository) FindByMembers(ctx context.Context, playerA, playerB int) (*models.Pair, error) {
	query := selectPairSQL + `
		WHERE (player1_id = $1 AND player2_id = $2) OR (player1_id = $2 AND player2_id = $1)`
	return r.findOne(ctx, query, playerA, playerB)
}

func (r *postgresPairRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.Pair, error) {
	pairs := make(map[int]*models.Pair, len(ids))
	if len(ids) == 0 {
		return pairs, nil
	}
	list, err := r.list(ctx, selectPairSQL+" WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for i := range list {
		pairs[list[i].ID] = &list[i]
	}
	return pairs, nil
}

func (r *postgresPairRepository) List(ctx context.Context, limit, offset int) ([]models.Pair, error) {
	query := selectPairSQL + " ORDER BY rank ASC NULLS LAST, id ASC"
	args := []interface{}{}
	argID := 1
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}
	return r.list(ctx, query, args...)
}

func (r *postgresPairRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Pair, error) {
	return r.list(ctx, selectPairSQL+" WHERE player1_id = $1 OR player2_id = $1 ORDER BY id", playerID)
}

func (r *postgresPairRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Pair, error) {
	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make([]models.Pair, 0)
	for rows.Next() {
		var p models.Pair
		if scanErr := scanPair(rows, &p); scanErr != nil {
			return nil, scanErr
		}
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *postgresPairRepository) Update(ctx context.Context, pair *models.Pair) error {
	query := `UPDATE pairs SET player1_id = $1, player2_id = $2, rank = $3 WHERE id = $4`
	result, err := r.getExecutor().ExecContext(ctx, query, pair.Player1ID, pair.Player2ID, pair.Rank, pair.ID)
	if err != nil {
		return handlePairError(err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

func (r *postgresPairRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM pairs WHERE id = $1`, id)
	if err != nil {
		return handlePairError(err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

func handlePairError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "pairs_members_key":
				return ErrPairConflict
			case "pairs_rank_key":
				return ErrPairRankConflict
			}
		case "23514":
			if pqErr.Constraint == "pairs_distinct_players" {
				return ErrPairSamePlayers
			}
		case "23503":
			switch pqErr.Constraint {
			case "pairs_player1_id_fkey", "pairs_player2_id_fkey":
				return ErrPairInvalidPlayer
			default:
				return ErrPairInUse
			}
		}
	}
	return err
}
