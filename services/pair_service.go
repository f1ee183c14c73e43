package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/resolver"
)

type PairService interface {
	CreatePair(ctx context.Context, input PairInput) (*models.Pair, error)
	GetPair(ctx context.Context, id int) (*models.Pair, error)
	ListPairs(ctx context.Context, limit, offset int) ([]models.Pair, error)
	UpdatePair(ctx context.Context, id int, input PairInput) (*models.Pair, error)
	DeletePair(ctx context.Context, id int) error
	GetDoublesMatches(ctx context.Context, id int) ([]models.MatchView, error)
}

// PairInput names both players by national id.
type PairInput struct {
	Player1NationalID string `json:"player1_national_id" validate:"required,numeric,len=11"`
	Player2NationalID string `json:"player2_national_id" validate:"required,numeric,len=11"`
	Rank              *int   `json:"rank" validate:"omitempty,gt=0"`
}

type pairService struct {
	tx         repositories.Transactor
	pairRepo   repositories.PairRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	loader     matchLoader
	views      cache.MatchViewCache
	logger     *slog.Logger
}

func NewPairService(
	tx repositories.Transactor,
	pairRepo repositories.PairRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	views cache.MatchViewCache,
	logger *slog.Logger,
) PairService {
	return &pairService{
		tx:         tx,
		pairRepo:   pairRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		loader:     matchLoader{playerRepo: playerRepo, pairRepo: pairRepo, tournamentRepo: tournamentRepo},
		views:      views,
		logger:     logger,
	}
}

func (s *pairService) CreatePair(ctx context.Context, input PairInput) (*models.Pair, error) {
	pair, err := s.resolveMembers(ctx, 0, input)
	if err != nil {
		return nil, err
	}
	if err := s.pairRepo.Create(ctx, pair); err != nil {
		return nil, translatePairError(err)
	}
	s.logger.InfoContext(ctx, "pair created", slog.Int("pair_id", pair.ID))
	return pair, nil
}

func (s *pairService) GetPair(ctx context.Context, id int) (*models.Pair, error) {
	pair, err := s.pairRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPairNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to get pair %d: %w", id, err)
	}
	if err := loadPairMembers(ctx, s.playerRepo, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *pairService) ListPairs(ctx context.Context, limit, offset int) ([]models.Pair, error) {
	pairs, err := s.pairRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	byID := make(map[int]*models.Pair, len(pairs))
	for i := range pairs {
		byID[pairs[i].ID] = &pairs[i]
	}
	if err := s.loader.attachMembers(ctx, byID); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (s *pairService) UpdatePair(ctx context.Context, id int, input PairInput) (*models.Pair, error) {
	pair, err := s.resolveMembers(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if err := s.pairRepo.Update(ctx, pair); err != nil {
		if errors.Is(err, repositories.ErrPairNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, translatePairError(err)
	}
	invalidateAllMatchViews(ctx, s.views, s.logger)
	return pair, nil
}

func (s *pairService) DeletePair(ctx context.Context, id int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.WithTx(exec).DeleteByPair(ctx, id); err != nil {
			return fmt.Errorf("failed to delete doubles matches: %w", err)
		}
		return s.pairRepo.WithTx(exec).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPairNotFound) {
			return ErrPairNotFound
		}
		return fmt.Errorf("failed to delete pair %d: %w", id, err)
	}
	invalidateAllMatchViews(ctx, s.views, s.logger)
	return nil
}

// GetDoublesMatches lists the pair's matches, each flagged with whether the pair won.
func (s *pairService) GetDoublesMatches(ctx context.Context, id int) ([]models.MatchView, error) {
	if _, err := s.GetPair(ctx, id); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByPair(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of pair %d: %w", id, err)
	}
	if err := s.loader.hydrate(ctx, matches); err != nil {
		return nil, err
	}
	tournaments, err := s.loader.tournaments(ctx, matches)
	if err != nil {
		return nil, err
	}

	views := make([]models.MatchView, 0, len(matches))
	for _, m := range matches {
		v, err := resolver.ViewForPair(*tournaments[m.TournamentID], m, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "cannot build match view", slog.Int("match_id", m.ID), slog.Any("error", err))
			return nil, err
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Timestamp.Before(views[j].Timestamp) })
	return views, nil
}

// resolveMembers looks both players up and rejects a pair that already exists in either order.
func (s *pairService) resolveMembers(ctx context.Context, id int, input PairInput) (*models.Pair, error) {
	nid1 := strings.TrimSpace(input.Player1NationalID)
	nid2 := strings.TrimSpace(input.Player2NationalID)
	if nid1 == nid2 {
		return nil, ErrPairSamePlayers
	}
	p1, err := s.playerByNationalID(ctx, nid1)
	if err != nil {
		return nil, err
	}
	p2, err := s.playerByNationalID(ctx, nid2)
	if err != nil {
		return nil, err
	}

	existing, err := s.pairRepo.FindByMembers(ctx, p1.ID, p2.ID)
	switch {
	case err == nil && existing.ID != id:
		return nil, ErrPairConflict
	case err != nil && !errors.Is(err, repositories.ErrPairNotFound):
		return nil, fmt.Errorf("failed to look up pair: %w", err)
	}

	return &models.Pair{
		ID:        id,
		Player1ID: p1.ID,
		Player2ID: p2.ID,
		Rank:      input.Rank,
		Player1:   p1,
		Player2:   p2,
	}, nil
}

func (s *pairService) playerByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	p, err := s.playerRepo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %s", ErrUnknownReference, nationalID)
		}
		return nil, fmt.Errorf("failed to look up player %s: %w", nationalID, err)
	}
	return p, nil
}

func translatePairError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPairConflict):
		return ErrPairConflict
	case errors.Is(err, repositories.ErrPairRankConflict):
		return ErrRankConflict
	case errors.Is(err, repositories.ErrPairSamePlayers):
		return ErrPairSamePlayers
	case errors.Is(err, repositories.ErrPairInvalidPlayer):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}
	return fmt.Errorf("failed to save pair: %w", err)
}
