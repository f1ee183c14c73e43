package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	statsRepo repositories.StatsRepository
}

func NewDashboardService(statsRepo repositories.StatsRepository) DashboardService {
	return &dashboardService{statsRepo: statsRepo}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	stats, err := s.statsRepo.Totals(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to load dashboard totals: %w", err)
	}
	return *stats, nil
}
