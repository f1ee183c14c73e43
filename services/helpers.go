package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/storage"
)

const dateLayout = "2006-01-02"

var timeNow = time.Now

func today() time.Time {
	return ledger.Day(timeNow())
}

// parseDate accepts "" as "not given".
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a date in the form %s", ErrValidationFailed, field, dateLayout)
	}
	return &t, nil
}

func dateOrToday(t *time.Time) time.Time {
	if t == nil {
		return today()
	}
	return ledger.Day(*t)
}

func ensurePlace(ctx context.Context, placeRepo repositories.PlaceRepository, zipCode *int, name string) error {
	name = strings.TrimSpace(name)
	if zipCode == nil || name == "" {
		return nil
	}
	if err := placeRepo.Ensure(ctx, models.Place{ZipCode: *zipCode, Name: name}); err != nil {
		return fmt.Errorf("failed to register place %d: %w", *zipCode, err)
	}
	return nil
}

func populateClubLogoURL(club *models.Club, uploader storage.FileUploader) {
	if club == nil || club.LogoKey == nil || *club.LogoKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*club.LogoKey); url != "" {
		club.LogoURL = &url
	}
}

// invalidateAllMatchViews is best effort: a stale cache entry expires on its own.
func invalidateAllMatchViews(ctx context.Context, c cache.MatchViewCache, logger *slog.Logger) {
	if err := c.InvalidateAll(ctx); err != nil {
		logger.WarnContext(ctx, "failed to invalidate match view cache", slog.Any("error", err))
	}
}

func invalidateTournamentViews(ctx context.Context, c cache.MatchViewCache, tournamentID int, logger *slog.Logger) {
	if err := c.InvalidateTournament(ctx, tournamentID); err != nil {
		logger.WarnContext(ctx, "failed to invalidate tournament match views", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}

// clubAffiliations runs ledger operations for one affiliation kind.
type clubAffiliations struct {
	repo     repositories.AffiliationRepository
	clubRepo repositories.ClubRepository
	policy   ledger.RejoinPolicy
	logger   *slog.Logger
}

func newClubAffiliations(repo repositories.AffiliationRepository, clubRepo repositories.ClubRepository, policy ledger.RejoinPolicy, logger *slog.Logger) clubAffiliations {
	return clubAffiliations{
		repo:     repo,
		clubRepo: clubRepo,
		policy:   policy,
		logger:   logger.With(slog.String("affiliation", string(repo.Kind()))),
	}
}

func (a clubAffiliations) ledger(exec repositories.SQLExecutor) *ledger.Ledger {
	return ledger.New(a.repo.WithTx(exec), ledger.WithRejoinPolicy(a.policy), ledger.WithLogger(a.logger))
}

func (a clubAffiliations) clubByName(ctx context.Context, exec repositories.SQLExecutor, name string) (*models.Club, error) {
	return clubByName(ctx, a.clubRepo.WithTx(exec), name)
}

// clubByName resolves a club named in request input.
func clubByName(ctx context.Context, clubRepo repositories.ClubRepository, name string) (*models.Club, error) {
	club, err := clubRepo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, fmt.Errorf("%w: club %q", ErrUnknownReference, name)
		}
		return nil, fmt.Errorf("failed to look up club %q: %w", name, err)
	}
	return club, nil
}

func (a clubAffiliations) summary(ctx context.Context, personID int) (models.AffiliationSummary, error) {
	return a.ledger(nil).Snapshot(ctx, personID)
}

func (a clubAffiliations) summaries(ctx context.Context, personIDs []int) (map[int]models.AffiliationSummary, error) {
	byPerson, err := a.repo.ListByPersons(ctx, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliations: %w", err)
	}
	out := make(map[int]models.AffiliationSummary, len(personIDs))
	for _, id := range personIDs {
		s, err := ledger.Summarize(id, byPerson[id])
		if err != nil {
			a.logger.ErrorContext(ctx, "inconsistent affiliation rows", slog.Int("person_id", id), slog.Any("error", err))
			return nil, fmt.Errorf("person %d: %w", id, err)
		}
		out[id] = s
	}
	return out, nil
}

// assign joins the named club when the person has none, and transfers otherwise.
// Naming the current club without a date leaves the ledger untouched.
func (a clubAffiliations) assign(ctx context.Context, exec repositories.SQLExecutor, personID int, clubName string, date *time.Time) error {
	club, err := a.clubByName(ctx, exec, clubName)
	if err != nil {
		return err
	}
	l := a.ledger(exec)
	current, err := l.CurrentClub(ctx, personID)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return l.Join(ctx, personID, club.ID, dateOrToday(date))
	case err != nil:
		return err
	}
	if current.ID == club.ID && date == nil {
		return nil
	}
	return l.Transfer(ctx, personID, club.ID, dateOrToday(date))
}

func (a clubAffiliations) transfer(ctx context.Context, exec repositories.SQLExecutor, personID int, clubName string, date *time.Time) error {
	club, err := a.clubByName(ctx, exec, clubName)
	if err != nil {
		return err
	}
	return a.ledger(exec).Transfer(ctx, personID, club.ID, dateOrToday(date))
}

// terminate closes the spell at the named club, or at the current one when clubName is empty.
func (a clubAffiliations) terminate(ctx context.Context, exec repositories.SQLExecutor, personID int, clubName string, date *time.Time) error {
	l := a.ledger(exec)
	var clubID int
	if strings.TrimSpace(clubName) == "" {
		current, err := l.CurrentClub(ctx, personID)
		if err != nil {
			return err
		}
		clubID = current.ID
	} else {
		club, err := a.clubByName(ctx, exec, clubName)
		if err != nil {
			return err
		}
		clubID = club.ID
	}
	return l.Terminate(ctx, personID, clubID, dateOrToday(date))
}

// AffiliationChangeInput moves a person to another club or ends their current spell.
type AffiliationChangeInput struct {
	Club string `json:"club" validate:"omitempty,max=100"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// PersonInput holds the identity fields shared by players and coaches.
type PersonInput struct {
	NationalID  string     `json:"national_id" validate:"required,numeric,len=11"`
	Name        string     `json:"name" validate:"required,max=100"`
	Surname     string     `json:"surname" validate:"required,max=100"`
	DateOfBirth string     `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Sex         models.Sex `json:"sex" validate:"required,oneof=MALE FEMALE"`
	ZipCode     *int       `json:"zip_code" validate:"omitempty,gt=0"`
	PlaceName   string     `json:"place_name" validate:"omitempty,max=100"`
}

func (in PersonInput) toPerson(id int) (models.Person, error) {
	dob, err := parseDate("date_of_birth", in.DateOfBirth)
	if err != nil {
		return models.Person{}, err
	}
	if !in.Sex.Valid() {
		return models.Person{}, fmt.Errorf("%w: sex must be MALE or FEMALE", ErrValidationFailed)
	}
	return models.Person{
		ID:          id,
		NationalID:  strings.TrimSpace(in.NationalID),
		Name:        strings.TrimSpace(in.Name),
		Surname:     strings.TrimSpace(in.Surname),
		DateOfBirth: dob,
		Sex:         in.Sex,
		ZipCode:     in.ZipCode,
	}, nil
}

func translatePersonError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPersonNationalIDConflict):
		return ErrNationalIDConflict
	case errors.Is(err, repositories.ErrPersonInvalidPlace):
		return ErrInvalidPlace
	case errors.Is(err, repositories.ErrPlayerRankConflict):
		return ErrRankConflict
	}
	return err
}
