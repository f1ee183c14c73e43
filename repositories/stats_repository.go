package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tennis-clubs/models"
)

type StatsRepository interface {
	Totals(ctx context.Context) (*models.DashboardStats, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) Totals(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clubs),
			(SELECT COUNT(*) FROM players),
			(SELECT COUNT(*) FROM coaches),
			(SELECT COUNT(*) FROM pairs),
			(SELECT COUNT(*) FROM tournaments),
			(SELECT COUNT(*) FROM matches)`

	var s models.DashboardStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ClubsTotal, &s.PlayersTotal, &s.CoachesTotal, &s.PairsTotal, &s.TournamentsTotal, &s.MatchesTotal,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
