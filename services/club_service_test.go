package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/storage"
)

func TestClubService_DeleteCascades(t *testing.T) {
	env := newTestEnv()
	oldLogo := "clubs/1/logo-1.png"
	env.clubs.clubs[1].LogoKey = &oldLogo
	env.tournaments.add(20, 1, "Zagreb Open", models.Category{Type: models.CategorySingles, AgeLimit: "U18", SexLimit: models.SexMale})
	env.tournaments.add(22, 2, "Split Open", models.Category{Type: models.CategorySingles, AgeLimit: "U14", SexLimit: models.SexMale})
	env.singlesMatch(20, 1, 2, "6-3", day(2024, time.May, 2))
	kept := env.singlesMatch(22, 3, 4, "6-3", day(2024, time.May, 2))
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)},
		{PersonID: 2, ClubID: 2, From: day(2020, time.January, 1)},
	}
	env.coaching.rows = []models.Affiliation{{PersonID: 9, ClubID: 1, From: day(2018, time.January, 1)}}
	env.transactions.transactions[1] = models.Transaction{ID: 1, ClubID: 1, Price: 20, PaymentMethod: models.PaymentCash}
	env.transactions.transactions[2] = models.Transaction{ID: 2, ClubID: 2, Price: 35, PaymentMethod: models.PaymentCreditCard}
	uploader := &fakeUploader{}
	svc := env.clubService(uploader)

	require.NoError(t, svc.DeleteClub(context.Background(), 1))

	assert.NotContains(t, env.clubs.clubs, 1)
	assert.NotContains(t, env.tournaments.tournaments, 20)
	assert.Contains(t, env.tournaments.tournaments, 22)
	require.Len(t, env.matches.matches, 1)
	assert.Equal(t, kept.ID, env.matches.matches[0].ID)
	require.Len(t, env.represents.rows, 1)
	assert.Equal(t, 2, env.represents.rows[0].ClubID)
	assert.Empty(t, env.coaching.rows)
	for _, c := range env.courts.courts {
		assert.Equal(t, 2, c.ClubID)
	}
	assert.Equal(t, []int{1}, env.meetings.deletedClubs)
	assert.Equal(t, []int{1}, env.transactions.deletedClubs)
	assert.NotContains(t, env.transactions.transactions, 1)
	assert.Contains(t, env.transactions.transactions, 2)
	assert.Equal(t, []int{1}, env.equipment.clearedClubs)
	assert.Len(t, env.categories.categories, 1)
	assert.Equal(t, 1, env.views.invalidatedAll)
	assert.Equal(t, []string{oldLogo}, uploader.deleted)

	assert.ErrorIs(t, svc.DeleteClub(context.Background(), 1), ErrClubNotFound)
}

func TestClubService_UploadLogo(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)
	env := newTestEnv()
	oldLogo := "clubs/1/logo-1.png"
	env.clubs.clubs[1].LogoKey = &oldLogo
	uploader := &fakeUploader{}
	svc := env.clubService(uploader)

	club, err := svc.UploadClubLogo(context.Background(), 1, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	wantKey := fmt.Sprintf("clubs/1/logo-%d.png", now.UnixNano())
	assert.Equal(t, "image/png:png-bytes", uploader.uploaded[wantKey])
	require.NotNil(t, club.LogoURL)
	assert.Equal(t, "https://cdn.test/"+wantKey, *club.LogoURL)
	assert.Equal(t, []string{oldLogo}, uploader.deleted)
	assert.Len(t, club.Courts, 2)

	_, err = svc.UploadClubLogo(context.Background(), 1, strings.NewReader("gif"), "image/gif")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, storage.ErrUnsupportedContentType)

	_, err = svc.UploadClubLogo(context.Background(), 42, strings.NewReader("png"), "image/png")
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestClubService_UploadLogoWithoutStorage(t *testing.T) {
	env := newTestEnv()
	svc := env.clubService(nil)

	_, err := svc.UploadClubLogo(context.Background(), 1, strings.NewReader("png"), "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	club, err := svc.GetClub(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, club.LogoURL)
}

func TestClubService_Roster(t *testing.T) {
	env := newTestEnv()
	env.represents.rows = []models.Affiliation{
		{PersonID: 1, ClubID: 1, From: day(2020, time.January, 1)},
		{PersonID: 2, ClubID: 1, From: day(2019, time.January, 1), To: closedAt(day(2020, time.January, 1))},
		{PersonID: 3, ClubID: 2, From: day(2020, time.January, 1)},
	}
	svc := env.clubService(nil)

	roster, err := svc.GetRoster(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "11111111111", roster.Players[0].NationalID)
	assert.Empty(t, roster.Coaches)

	_, err = svc.GetRoster(context.Background(), 42)
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestClubService_CreateRejectsDuplicateName(t *testing.T) {
	env := newTestEnv()
	svc := env.clubService(nil)

	club, err := svc.CreateClub(context.Background(), ClubInput{Name: "TK Rijeka", Email: "tk@rijeka.hr", ZipCode: intPtr(51000), PlaceName: "Rijeka"})
	require.NoError(t, err)
	assert.Equal(t, "TK Rijeka", club.Name)
	assert.Equal(t, []models.Place{{ZipCode: 51000, Name: "Rijeka"}}, env.places.ensured)

	_, err = svc.CreateClub(context.Background(), ClubInput{Name: "TK Split", Email: "x@split.hr"})
	assert.ErrorIs(t, err, ErrClubNameConflict)
}
