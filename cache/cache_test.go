package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, MatchViewCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mr, NewRedisMatchViewCache(client, 5*time.Minute, logger)
}

func sampleViews() []models.MatchView {
	return []models.MatchView{{
		ID:             1,
		Timestamp:      time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
		Result:         "6-3",
		Participant1:   "Ana Konjuh, 12345678901",
		Participant2:   "Donna Vekić, 10987654321",
		TournamentID:   3,
		TournamentName: "Zagreb Open",
		CategoryType:   models.CategorySingles,
	}}
}

func TestMatchViewCache_RoundTripWithTTL(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.GetTournamentMatches(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetTournamentMatches(ctx, 3, sampleViews()))
	assert.True(t, mr.Exists("tournament:3:matches"))
	assert.Equal(t, 5*time.Minute, mr.TTL("tournament:3:matches"))

	views, ok, err := c.GetTournamentMatches(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, views, 1)
	assert.Equal(t, "Zagreb Open", views[0].TournamentName)

	mr.FastForward(6 * time.Minute)
	_, ok, err = c.GetTournamentMatches(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchViewCache_Invalidate(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetTournamentMatches(ctx, 3, sampleViews()))
	require.NoError(t, c.SetTournamentMatches(ctx, 4, sampleViews()))
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, c.InvalidateTournament(ctx, 3))
	assert.False(t, mr.Exists("tournament:3:matches"))
	assert.True(t, mr.Exists("tournament:4:matches"))

	require.NoError(t, c.InvalidateAll(ctx))
	assert.False(t, mr.Exists("tournament:4:matches"))
	assert.True(t, mr.Exists("unrelated"))
}

func TestMatchViewCache_CorruptEntryIsAMiss(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set("tournament:3:matches", "{not json"))

	_, ok, err := c.GetTournamentMatches(context.Background(), 3)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("tournament:3:matches"))
}

func TestNoopMatchViewCache(t *testing.T) {
	c := NewNoopMatchViewCache()
	ctx := context.Background()

	require.NoError(t, c.SetTournamentMatches(ctx, 3, sampleViews()))
	_, ok, err := c.GetTournamentMatches(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}
