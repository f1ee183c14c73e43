package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchInvalidRef = errors.New("match references an unknown tournament, court, player or pair")
	ErrMatchShape      = errors.New("match needs exactly two players or exactly two pairs")
)

type MatchRepository interface {
	WithTx(exec SQLExecutor) MatchRepository
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Match, error)
	ListByPair(ctx context.Context, pairID int) ([]models.Match, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
	DeleteByTournament(ctx context.Context, tournamentID int) error
	DeleteByPlayer(ctx context.Context, playerID int) error
	DeleteByPair(ctx context.Context, pairID int) error
}

type postgresMatchRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) WithTx(exec SQLExecutor) MatchRepository {
	return &postgresMatchRepository{db: r.db, exec: exec}
}

func (r *postgresMatchRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectMatchSQL = `
	SELECT
		m.id, m.tournament_id, m.court_id, m.match_timestamp, m.match_result, m.duration, m.stage,
		m.player1_id, m.player2_id, m.pair1_id, m.pair2_id,
		co.club_id, co.name, co.surface
	FROM matches m
	JOIN courts co ON co.id = m.court_id`

func scanMatch(row rowScanner, m *models.Match) error {
	court := &models.Court{}
	if err := row.Scan(
		&m.ID, &m.TournamentID, &m.CourtID, &m.Timestamp, &m.Result, &m.Duration, &m.Stage,
		&m.Player1ID, &m.Player2ID, &m.Pair1ID, &m.Pair2ID,
		&court.ClubID, &court.Name, &court.Surface,
	); err != nil {
		return err
	}
	court.ID = m.CourtID
	m.Court = court
	return nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (
			tournament_id, court_id, match_timestamp, match_result, duration, stage,
			player1_id, player2_id, pair1_id, pair2_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.getExecutor().QueryRowContext(ctx, query,
		m.TournamentID, m.CourtID, m.Timestamp, m.Result, m.Duration, m.Stage,
		m.Player1ID, m.Player2ID, m.Pair1ID, m.Pair2ID,
	).Scan(&m.ID)
	return handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	var m models.Match
	err := scanMatch(r.getExecutor().QueryRowContext(ctx, selectMatchSQL+" WHERE m.id = $1", id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	return r.list(ctx, selectMatchSQL+" WHERE m.tournament_id = $1 ORDER BY m.match_timestamp ASC, m.id ASC", tournamentID)
}

// ListByPlayer returns the singles matches of a player.
func (r *postgresMatchRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Match, error) {
	return r.list(ctx, selectMatchSQL+" WHERE m.player1_id = $1 OR m.player2_id = $1 ORDER BY m.match_timestamp DESC", playerID)
}

func (r *postgresMatchRepository) ListByPair(ctx context.Context, pairID int) ([]models.Match, error) {
	return r.list(ctx, selectMatchSQL+" WHERE m.pair1_id = $1 OR m.pair2_id = $1 ORDER BY m.match_timestamp DESC", pairID)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var n int
	err := r.getExecutor().QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&n)
	return n, err
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches
		SET court_id = $1, match_timestamp = $2, match_result = $3, duration = $4, stage = $5,
			player1_id = $6, player2_id = $7, pair1_id = $8, pair2_id = $9
		WHERE id = $10 AND tournament_id = $11`
	result, err := r.getExecutor().ExecContext(ctx, query,
		m.CourtID, m.Timestamp, m.Result, m.Duration, m.Stage,
		m.Player1ID, m.Player2ID, m.Pair1ID, m.Pair2ID,
		m.ID, m.TournamentID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, tournamentID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) DeleteByPlayer(ctx context.Context, playerID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM matches WHERE player1_id = $1 OR player2_id = $1`, playerID)
	return err
}

func (r *postgresMatchRepository) DeleteByPair(ctx context.Context, pairID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM matches WHERE pair1_id = $1 OR pair2_id = $1`, pairID)
	return err
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23503":
			return ErrMatchInvalidRef
		case "23514":
			if pqErr.Constraint == "matches_one_shape" {
				return ErrMatchShape
			}
		}
	}
	return err
}
