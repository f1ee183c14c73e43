package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

const tournamentLoadLimit = 4

// matchLoader attaches the records a match view needs. Missing records are left nil so the
// resolver reports them as a data consistency error instead of a silent gap.
type matchLoader struct {
	playerRepo     repositories.PlayerRepository
	pairRepo       repositories.PairRepository
	tournamentRepo repositories.TournamentRepository
}

func (l matchLoader) hydrate(ctx context.Context, matches []models.Match) error {
	playerIDs := make([]int, 0)
	pairIDs := make([]int, 0)
	for _, m := range matches {
		for _, id := range []*int{m.Player1ID, m.Player2ID} {
			if id != nil {
				playerIDs = append(playerIDs, *id)
			}
		}
		for _, id := range []*int{m.Pair1ID, m.Pair2ID} {
			if id != nil {
				pairIDs = append(pairIDs, *id)
			}
		}
	}

	var players map[int]*models.Player
	var pairs map[int]*models.Pair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = l.playerRepo.GetByIDs(gctx, playerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		pairs, err = l.pairRepo.GetByIDs(gctx, pairIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load match participants: %w", err)
	}

	if err := l.attachMembers(ctx, pairs); err != nil {
		return err
	}

	for i := range matches {
		m := &matches[i]
		if m.Player1ID != nil {
			m.Player1 = players[*m.Player1ID]
		}
		if m.Player2ID != nil {
			m.Player2 = players[*m.Player2ID]
		}
		if m.Pair1ID != nil {
			m.Pair1 = pairs[*m.Pair1ID]
		}
		if m.Pair2ID != nil {
			m.Pair2 = pairs[*m.Pair2ID]
		}
	}
	return nil
}

func (l matchLoader) attachMembers(ctx context.Context, pairs map[int]*models.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	memberIDs := make([]int, 0, len(pairs)*2)
	for _, p := range pairs {
		memberIDs = append(memberIDs, p.Player1ID, p.Player2ID)
	}
	members, err := l.playerRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return fmt.Errorf("failed to load pair members: %w", err)
	}
	for _, p := range pairs {
		p.Player1 = members[p.Player1ID]
		p.Player2 = members[p.Player2ID]
	}
	return nil
}

// tournaments loads every tournament the matches belong to, category included.
func (l matchLoader) tournaments(ctx context.Context, matches []models.Match) (map[int]*models.Tournament, error) {
	ids := make(map[int]struct{})
	for _, m := range matches {
		ids[m.TournamentID] = struct{}{}
	}

	var mu sync.Mutex
	out := make(map[int]*models.Tournament, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tournamentLoadLimit)
	for id := range ids {
		g.Go(func() error {
			t, err := l.tournamentRepo.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrTournamentNotFound) {
					return fmt.Errorf("%w: tournament %d is missing", ErrTournamentNotFound, id)
				}
				return fmt.Errorf("failed to load tournament %d: %w", id, err)
			}
			mu.Lock()
			out[id] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadPairMembers fills Player1/Player2 of a single pair.
func loadPairMembers(ctx context.Context, playerRepo repositories.PlayerRepository, pair *models.Pair) error {
	members, err := playerRepo.GetByIDs(ctx, []int{pair.Player1ID, pair.Player2ID})
	if err != nil {
		return fmt.Errorf("failed to load pair members: %w", err)
	}
	pair.Player1 = members[pair.Player1ID]
	pair.Player2 = members[pair.Player2ID]
	return nil
}
