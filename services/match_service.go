package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/live"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/resolver"
)

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID int) ([]models.MatchView, error)
	GetMatch(ctx context.Context, tournamentID, matchID int) (*models.MatchView, error)
	CreateMatch(ctx context.Context, tournamentID int, input MatchInput) (*models.MatchView, error)
	UpdateMatch(ctx context.Context, tournamentID, matchID int, input MatchInput) (*models.MatchView, error)
	DeleteMatch(ctx context.Context, tournamentID, matchID int) error
}

// MatchInput identifies opponents by national id in singles tournaments and by pair id in doubles ones.
// Opponent1 is the host side.
type MatchInput struct {
	Court     string        `json:"court" validate:"required,max=100"`
	Timestamp time.Time     `json:"match_timestamp" validate:"required"`
	Result    string        `json:"match_result" validate:"required,max=20"`
	Duration  *string       `json:"duration" validate:"omitempty,max=20"`
	Stage     *models.Stage `json:"stage"`
	Opponent1 string        `json:"opponent1" validate:"required,max=20"`
	Opponent2 string        `json:"opponent2" validate:"required,max=20"`
}

type matchService struct {
	tx             repositories.Transactor
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	courtRepo      repositories.CourtRepository
	playerRepo     repositories.PlayerRepository
	pairRepo       repositories.PairRepository
	loader         matchLoader
	views          cache.MatchViewCache
	notifier       live.Notifier
	logger         *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	courtRepo repositories.CourtRepository,
	playerRepo repositories.PlayerRepository,
	pairRepo repositories.PairRepository,
	views cache.MatchViewCache,
	notifier live.Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             tx,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		courtRepo:      courtRepo,
		playerRepo:     playerRepo,
		pairRepo:       pairRepo,
		loader:         matchLoader{playerRepo: playerRepo, pairRepo: pairRepo, tournamentRepo: tournamentRepo},
		views:          views,
		notifier:       notifier,
		logger:         logger,
	}
}

// ListMatches serves the tournament's match views from the cache when it can.
func (s *matchService) ListMatches(ctx context.Context, tournamentID int) ([]models.MatchView, error) {
	t, err := s.tournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	cached, ok, err := s.views.GetTournamentMatches(ctx, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "match view cache read failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	if err := s.loader.hydrate(ctx, matches); err != nil {
		return nil, err
	}

	views := make([]models.MatchView, 0, len(matches))
	for _, m := range matches {
		v, err := resolver.View(*t, m)
		if err != nil {
			s.logger.ErrorContext(ctx, "cannot build match view", slog.Int("match_id", m.ID), slog.Any("error", err))
			return nil, err
		}
		views = append(views, v)
	}

	if err := s.views.SetTournamentMatches(ctx, tournamentID, views); err != nil {
		s.logger.WarnContext(ctx, "match view cache write failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return views, nil
}

func (s *matchService) GetMatch(ctx context.Context, tournamentID, matchID int) (*models.MatchView, error) {
	t, err := s.tournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}
	m, err := s.matchOf(ctx, s.matchRepo, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	matches := []models.Match{*m}
	if err := s.loader.hydrate(ctx, matches); err != nil {
		return nil, err
	}
	v, err := resolver.View(*t, matches[0])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *matchService) CreateMatch(ctx context.Context, tournamentID int, input MatchInput) (*models.MatchView, error) {
	var view models.MatchView
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournament(ctx, s.tournamentRepo.WithTx(exec), tournamentID)
		if err != nil {
			return err
		}
		m, err := s.buildMatch(ctx, exec, t, input)
		if err != nil {
			return err
		}
		if err := s.matchRepo.WithTx(exec).Create(ctx, m); err != nil {
			return translateMatchError(err)
		}
		view, err = resolver.View(*t, *m)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.afterWrite(ctx, tournamentID, live.EventMatchCreated, view)
	return &view, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, tournamentID, matchID int, input MatchInput) (*models.MatchView, error) {
	var view models.MatchView
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournament(ctx, s.tournamentRepo.WithTx(exec), tournamentID)
		if err != nil {
			return err
		}
		matchRepo := s.matchRepo.WithTx(exec)
		if _, err := s.matchOf(ctx, matchRepo, tournamentID, matchID); err != nil {
			return err
		}
		m, err := s.buildMatch(ctx, exec, t, input)
		if err != nil {
			return err
		}
		m.ID = matchID
		if err := matchRepo.Update(ctx, m); err != nil {
			return translateMatchError(err)
		}
		view, err = resolver.View(*t, *m)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
	}

	s.afterWrite(ctx, tournamentID, live.EventMatchUpdated, view)
	return &view, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, tournamentID, matchID int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		matchRepo := s.matchRepo.WithTx(exec)
		if _, err := s.matchOf(ctx, matchRepo, tournamentID, matchID); err != nil {
			return err
		}
		return translateMatchError(matchRepo.Delete(ctx, matchID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}

	s.afterWrite(ctx, tournamentID, live.EventMatchDeleted, map[string]int{"id": matchID, "tournament_id": tournamentID})
	return nil
}

func (s *matchService) afterWrite(ctx context.Context, tournamentID int, event string, payload interface{}) {
	invalidateTournamentViews(ctx, s.views, tournamentID, s.logger)
	s.notifier.PublishMatchEvent(tournamentID, event, payload)
	s.logger.InfoContext(ctx, "match written", slog.Int("tournament_id", tournamentID), slog.String("event", event))
}

// buildMatch validates the input against the tournament: the result must parse, the court must
// belong to the host club and the opponents must fit the category and differ.
func (s *matchService) buildMatch(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, input MatchInput) (*models.Match, error) {
	score, err := resolver.ParseResult(input.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMatchResult, err)
	}
	if input.Stage != nil && !input.Stage.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, *input.Stage)
	}
	if input.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: match_timestamp is required", ErrValidationFailed)
	}

	courts, err := s.courtRepo.WithTx(exec).ListByClub(ctx, t.ClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts of club %d: %w", t.ClubID, err)
	}
	court, err := resolver.FindCourtByName(courts, strings.TrimSpace(input.Court))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}

	m := &models.Match{
		TournamentID: t.ID,
		CourtID:      court.ID,
		Court:        court,
		Timestamp:    input.Timestamp,
		Result:       fmt.Sprintf("%d-%d", score.Host, score.Guest),
		Duration:     input.Duration,
		Stage:        input.Stage,
	}

	op1 := strings.TrimSpace(input.Opponent1)
	op2 := strings.TrimSpace(input.Opponent2)
	if op1 == op2 {
		return nil, ErrSameOpponent
	}

	switch t.Category.Type {
	case models.CategorySingles:
		playerRepo := s.playerRepo.WithTx(exec)
		host, err := opponentPlayer(ctx, playerRepo, op1)
		if err != nil {
			return nil, err
		}
		guest, err := opponentPlayer(ctx, playerRepo, op2)
		if err != nil {
			return nil, err
		}
		m.Player1ID, m.Player2ID = &host.ID, &guest.ID
		m.Player1, m.Player2 = host, guest

	case models.CategoryDoubles:
		host, err := s.opponentPair(ctx, exec, op1)
		if err != nil {
			return nil, err
		}
		guest, err := s.opponentPair(ctx, exec, op2)
		if err != nil {
			return nil, err
		}
		if host.HasMember(guest.Player1ID) || host.HasMember(guest.Player2ID) {
			return nil, fmt.Errorf("%w: pairs %d and %d share a player", ErrSameOpponent, host.ID, guest.ID)
		}
		m.Pair1ID, m.Pair2ID = &host.ID, &guest.ID
		m.Pair1, m.Pair2 = host, guest

	default:
		return nil, fmt.Errorf("%w: tournament %d has category type %q", resolver.ErrDataConsistency, t.ID, t.Category.Type)
	}
	return m, nil
}

func opponentPlayer(ctx context.Context, playerRepo repositories.PlayerRepository, nationalID string) (*models.Player, error) {
	p, err := playerRepo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %s", ErrUnknownReference, nationalID)
		}
		return nil, fmt.Errorf("failed to look up player %s: %w", nationalID, err)
	}
	return p, nil
}

func (s *matchService) opponentPair(ctx context.Context, exec repositories.SQLExecutor, ref string) (*models.Pair, error) {
	id, err := strconv.Atoi(ref)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: doubles opponents are pair ids, got %q", ErrValidationFailed, ref)
	}
	pair, err := s.pairRepo.WithTx(exec).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPairNotFound) {
			return nil, fmt.Errorf("%w: pair %d", ErrUnknownReference, id)
		}
		return nil, fmt.Errorf("failed to look up pair %d: %w", id, err)
	}
	if err := loadPairMembers(ctx, s.playerRepo.WithTx(exec), pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *matchService) tournament(ctx context.Context, repo repositories.TournamentRepository, id int) (*models.Tournament, error) {
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if t.Category == nil {
		return nil, fmt.Errorf("%w: tournament %d has no category", resolver.ErrDataConsistency, id)
	}
	return t, nil
}

// matchOf loads a match and hides matches of other tournaments.
func (s *matchService) matchOf(ctx context.Context, repo repositories.MatchRepository, tournamentID, matchID int) (*models.Match, error) {
	m, err := repo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if m.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func translateMatchError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchInvalidRef):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	case errors.Is(err, repositories.ErrMatchShape):
		return fmt.Errorf("%w: %w", resolver.ErrDataConsistency, err)
	}
	return err
}
