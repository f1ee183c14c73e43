// Package cache keeps resolved match listings of tournaments in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Dosada05/tennis-clubs/models"
)

const keyPattern = "tournament:*:matches"

// MatchViewCache stores the MatchView listing of each tournament.
type MatchViewCache interface {
	GetTournamentMatches(ctx context.Context, tournamentID int) ([]models.MatchView, bool, error)
	SetTournamentMatches(ctx context.Context, tournamentID int, views []models.MatchView) error
	InvalidateTournament(ctx context.Context, tournamentID int) error
	// InvalidateAll drops every listing, for writes that change labels across tournaments.
	InvalidateAll(ctx context.Context) error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

type redisMatchViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisMatchViewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) MatchViewCache {
	return &redisMatchViewCache{client: client, ttl: ttl, logger: logger}
}

func tournamentKey(tournamentID int) string {
	return fmt.Sprintf("tournament:%d:matches", tournamentID)
}

func (c *redisMatchViewCache) GetTournamentMatches(ctx context.Context, tournamentID int) ([]models.MatchView, bool, error) {
	val, err := c.client.Get(ctx, tournamentKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached matches: %w", err)
	}

	var views []models.MatchView
	if err := json.Unmarshal(val, &views); err != nil {
		c.logger.WarnContext(ctx, "dropping unreadable cache entry", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		_ = c.client.Del(ctx, tournamentKey(tournamentID)).Err()
		return nil, false, nil
	}
	return views, true, nil
}

func (c *redisMatchViewCache) SetTournamentMatches(ctx context.Context, tournamentID int, views []models.MatchView) error {
	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	if err := c.client.Set(ctx, tournamentKey(tournamentID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache matches: %w", err)
	}
	return nil
}

func (c *redisMatchViewCache) InvalidateTournament(ctx context.Context, tournamentID int) error {
	if err := c.client.Del(ctx, tournamentKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate matches of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (c *redisMatchViewCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached matches: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached matches: %w", err)
	}
	return nil
}

type noopMatchViewCache struct{}

// NewNoopMatchViewCache is used when no Redis address is configured.
func NewNoopMatchViewCache() MatchViewCache {
	return noopMatchViewCache{}
}

func (noopMatchViewCache) GetTournamentMatches(context.Context, int) ([]models.MatchView, bool, error) {
	return nil, false, nil
}

func (noopMatchViewCache) SetTournamentMatches(context.Context, int, []models.MatchView) error {
	return nil
}

func (noopMatchViewCache) InvalidateTournament(context.Context, int) error { return nil }

func (noopMatchViewCache) InvalidateAll(context.Context) error { return nil }
