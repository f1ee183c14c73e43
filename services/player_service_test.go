package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/resolver"
)

func personInput(nationalID, name, surname string) PersonInput {
	return PersonInput{NationalID: nationalID, Name: name, Surname: surname, Sex: models.SexFemale}
}

func closedAt(t time.Time) *time.Time { return &t }

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestPlayerService_CreateJoinsClub(t *testing.T) {
	env := newTestEnv()
	svc := env.playerService(ledger.RejoinReopen)

	in := PlayerInput{PersonInput: personInput("55555555555", "Petra", "Maric"), Club: "TK Mladost", ClubFrom: "2020-01-15"}
	in.ZipCode = intPtr(10000)
	in.PlaceName = "Zagreb"

	details, err := svc.CreatePlayer(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "55555555555", details.NationalID)
	require.NotNil(t, details.Affiliations.Current)
	assert.Equal(t, models.ClubRef{ID: 1, Name: "TK Mladost"}, *details.Affiliations.Current)
	assert.Empty(t, details.Affiliations.History)
	require.Len(t, env.represents.rows, 1)
	assert.Equal(t, day(2020, time.January, 15), env.represents.rows[0].From)
	assert.Equal(t, []models.Place{{ZipCode: 10000, Name: "Zagreb"}}, env.places.ensured)
}

func TestPlayerService_CreateWithoutDateJoinsToday(t *testing.T) {
	freezeTime(t, time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC))
	env := newTestEnv()
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.CreatePlayer(context.Background(), PlayerInput{PersonInput: personInput("55555555555", "Petra", "Maric"), Club: "TK Split"})
	require.NoError(t, err)

	require.Len(t, env.represents.rows, 1)
	assert.Equal(t, 2, env.represents.rows[0].ClubID)
	assert.Equal(t, day(2024, time.March, 10), env.represents.rows[0].From)
}

func TestPlayerService_CreateRejectsBadInput(t *testing.T) {
	env := newTestEnv()
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.CreatePlayer(context.Background(), PlayerInput{PersonInput: personInput("55555555555", "Petra", "Maric"), Club: "TK Nepostojeci"})
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = svc.CreatePlayer(context.Background(), PlayerInput{PersonInput: personInput("66666666666", "Petra", "Maric"), Club: "TK Split", ClubFrom: "15.01.2020."})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreatePlayer(context.Background(), PlayerInput{PersonInput: personInput("11111111111", "Ana", "Horvat")})
	assert.ErrorIs(t, err, ErrNationalIDConflict)
}

func TestPlayerService_UpdateTransfersToNamedClub(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)}}
	svc := env.playerService(ledger.RejoinReopen)

	details, err := svc.UpdatePlayer(context.Background(), 1, PlayerInput{
		PersonInput: personInput("11111111111", "Ana", "Horvat"),
		Club:        "TK Split",
		ClubFrom:    "2022-06-01",
	})
	require.NoError(t, err)

	require.NotNil(t, details.Affiliations.Current)
	assert.Equal(t, 2, details.Affiliations.Current.ID)
	require.Len(t, details.Affiliations.History, 1)
	h := details.Affiliations.History[0]
	assert.Equal(t, 1, h.ClubID)
	assert.Equal(t, day(2022, time.June, 1), h.To)
	assert.Equal(t, "TK Mladost: 1.1.2020. - 1.6.2022.", h.Label())
	assert.Equal(t, 1, env.views.invalidatedAll)
}

func TestPlayerService_UpdateNamingCurrentClubKeepsSpell(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)}}
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.UpdatePlayer(context.Background(), 1, PlayerInput{PersonInput: personInput("11111111111", "Ana", "Horvat-Kos"), Club: "TK Mladost"})
	require.NoError(t, err)

	require.Len(t, env.represents.rows, 1)
	assert.Equal(t, day(2020, time.January, 1), env.represents.rows[0].From)
	assert.Nil(t, env.represents.rows[0].To)
	assert.Equal(t, "Horvat-Kos", env.players.players[1].Surname)
}

func TestPlayerService_UpdateUnknownPlayer(t *testing.T) {
	env := newTestEnv()
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.UpdatePlayer(context.Background(), 99, PlayerInput{PersonInput: personInput("99999999999", "X", "Y")})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerService_TransferBackReopensVisitedClub(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2019, time.January, 1), To: closedAt(day(2020, time.December, 31))},
		{PersonID: 1, ClubID: 2, From: day(2021, time.January, 1)},
	}
	svc := env.playerService(ledger.RejoinReopen)

	summary, err := svc.TransferPlayer(context.Background(), 1, AffiliationChangeInput{Club: "TK Mladost", Date: "2023-03-01"})
	require.NoError(t, err)

	require.NotNil(t, summary.Current)
	assert.Equal(t, models.ClubRef{ID: 1, Name: "TK Mladost"}, *summary.Current)
	require.Len(t, summary.History, 1)
	assert.Equal(t, 2, summary.History[0].ClubID)
	assert.Equal(t, day(2023, time.March, 1), summary.History[0].To)
	assert.Len(t, env.represents.rows, 2)
}

func TestPlayerService_TransferBackUnderLegacyPolicy(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2019, time.January, 1), To: closedAt(day(2020, time.December, 31))},
		{PersonID: 1, ClubID: 2, From: day(2021, time.January, 1)},
	}
	svc := env.playerService(ledger.RejoinLegacy)

	summary, err := svc.TransferPlayer(context.Background(), 1, AffiliationChangeInput{Club: "TK Mladost", Date: "2023-03-01"})
	require.NoError(t, err)

	require.NotNil(t, summary.Current)
	assert.Equal(t, 2, summary.Current.ID)
	assert.Equal(t, day(2023, time.March, 1), env.represents.rows[0].From)
}

func TestPlayerService_TransferErrors(t *testing.T) {
	env := newTestEnv()
	svc := env.playerService(ledger.RejoinReopen)
	ctx := context.Background()

	_, err := svc.TransferPlayer(ctx, 1, AffiliationChangeInput{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.TransferPlayer(ctx, 1, AffiliationChangeInput{Club: "TK Split"})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = svc.TransferPlayer(ctx, 99, AffiliationChangeInput{Club: "TK Split"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	env.represents.rows = []models.Affiliation{{PersonID: 1, ClubID: 1, From: day(2022, time.January, 1)}}
	_, err = svc.TransferPlayer(ctx, 1, AffiliationChangeInput{Club: "TK Split", Date: "2021-01-01"})
	assert.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}

func TestPlayerService_TerminateClosesCurrentSpell(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)}}
	svc := env.playerService(ledger.RejoinReopen)
	ctx := context.Background()

	_, err := svc.TerminatePlayer(ctx, 1, AffiliationChangeInput{Date: "2019-05-05"})
	assert.ErrorIs(t, err, ledger.ErrInvalidDateRange)

	summary, err := svc.TerminatePlayer(ctx, 1, AffiliationChangeInput{Date: "2021-05-05"})
	require.NoError(t, err)
	assert.Nil(t, summary.Current)
	require.Len(t, summary.History, 1)
	assert.Equal(t, day(2021, time.May, 5), summary.History[0].To)

	_, err = svc.TerminatePlayer(ctx, 1, AffiliationChangeInput{})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPlayerService_SurfacesSeveralOpenSpells(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)},
		{PersonID: 1, ClubID: 2, From: day(2021, time.January, 1)},
	}
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.GetAffiliations(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrInvariantViolation)

	_, err = svc.ListPlayers(context.Background(), models.PersonFilter{})
	assert.ErrorIs(t, err, ledger.ErrInvariantViolation)

	_, err = svc.TransferPlayer(context.Background(), 1, AffiliationChangeInput{Club: "TK Zagreb"})
	assert.ErrorIs(t, err, ledger.ErrInvariantViolation)
}

func TestPlayerService_ListAttachesSummaries(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{{PersonID: 2, ClubID: 2, From: day(2020, time.January, 1)}}
	svc := env.playerService(ledger.RejoinReopen)

	players, err := svc.ListPlayers(context.Background(), models.PersonFilter{})
	require.NoError(t, err)
	require.Len(t, players, 4)

	assert.Nil(t, players[0].Affiliations.Current)
	require.NotNil(t, players[1].Affiliations.Current)
	assert.Equal(t, "TK Split", players[1].Affiliations.Current.Name)
}

func TestPlayerService_GetSinglesMatches(t *testing.T) {
	env := newTestEnv()
	env.tournaments.add(20, 1, "Zagreb Open", models.Category{Type: models.CategorySingles, AgeLimit: "U18", SexLimit: models.SexFemale})
	env.singlesMatch(20, 1, 2, "6-3", day(2024, time.May, 2))
	env.singlesMatch(20, 3, 1, "7-5", day(2024, time.May, 1))
	env.singlesMatch(20, 1, 4, "6-6", day(2024, time.May, 3))
	env.singlesMatch(20, 2, 3, "6-0", day(2024, time.May, 4))
	svc := env.playerService(ledger.RejoinReopen)

	views, err := svc.GetSinglesMatches(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 3)

	won := make([]int, len(views))
	for i, v := range views {
		require.NotNil(t, v.Won)
		won[i] = *v.Won
	}
	assert.Equal(t, []int{0, 1, 0}, won)

	assert.Equal(t, "Mia Kovac, 33333333333", views[0].Participant1)
	assert.Equal(t, "Ana Horvat, 11111111111", views[0].Participant2)
	assert.Equal(t, "Zagreb Open", views[1].TournamentName)
	assert.Equal(t, "Centralni", views[1].CourtName)
	assert.Equal(t, models.CategorySingles, views[1].CategoryType)
}

func TestPlayerService_GetSinglesMatchesReportsMissingOpponent(t *testing.T) {
	env := newTestEnv()
	env.tournaments.add(20, 1, "Zagreb Open", models.Category{Type: models.CategorySingles, AgeLimit: "U18", SexLimit: models.SexFemale})
	env.singlesMatch(20, 1, 77, "6-3", day(2024, time.May, 2))
	svc := env.playerService(ledger.RejoinReopen)

	_, err := svc.GetSinglesMatches(context.Background(), 1)
	assert.ErrorIs(t, err, resolver.ErrDataConsistency)
}

func TestPlayerService_DeleteCascades(t *testing.T) {
	env := newTestEnv()
	env.tournaments.add(20, 1, "Zagreb Open", models.Category{Type: models.CategorySingles, AgeLimit: "U18", SexLimit: models.SexFemale})
	env.tournaments.add(21, 1, "Zagreb Doubles", models.Category{Type: models.CategoryDoubles, AgeLimit: "U18", SexLimit: models.SexFemale})
	env.pairs = newFakePairRepo(
		models.Pair{ID: 7, Player1ID: 1, Player2ID: 2},
		models.Pair{ID: 8, Player1ID: 3, Player2ID: 4},
	)
	env.doublesMatch(21, 7, 8, "6-4", day(2024, time.June, 1))
	env.singlesMatch(20, 2, 1, "6-4", day(2024, time.June, 2))
	kept := env.singlesMatch(20, 3, 4, "6-4", day(2024, time.June, 3))
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)},
		{PersonID: 3, ClubID: 1, From: day(2020, time.January, 1)},
	}
	svc := env.playerService(ledger.RejoinReopen)

	require.NoError(t, svc.DeletePlayer(context.Background(), 1))

	require.Len(t, env.matches.matches, 1)
	assert.Equal(t, kept.ID, env.matches.matches[0].ID)
	assert.NotContains(t, env.pairs.pairs, 7)
	assert.Contains(t, env.pairs.pairs, 8)
	require.Len(t, env.represents.rows, 1)
	assert.Equal(t, 3, env.represents.rows[0].PersonID)
	assert.NotContains(t, env.players.players, 1)
	assert.Equal(t, 1, env.views.invalidatedAll)

	assert.ErrorIs(t, svc.DeletePlayer(context.Background(), 1), ErrPlayerNotFound)
}
