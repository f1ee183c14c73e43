package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

// fakeTx runs fn without a transaction; fakes ignore the executor.
type fakeTx struct{ calls int }

func (t *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type fakeClubRepo struct {
	repositories.ClubRepository
	clubs map[int]*models.Club
}

func newFakeClubRepo(clubs ...models.Club) *fakeClubRepo {
	r := &fakeClubRepo{clubs: map[int]*models.Club{}}
	for i := range clubs {
		c := clubs[i]
		r.clubs[c.ID] = &c
	}
	return r
}

func (r *fakeClubRepo) WithTx(repositories.SQLExecutor) repositories.ClubRepository { return r }

func (r *fakeClubRepo) Create(_ context.Context, c *models.Club) error {
	for _, existing := range r.clubs {
		if existing.Name == c.Name {
			return repositories.ErrClubNameConflict
		}
	}
	c.ID = len(r.clubs) + 100
	cp := *c
	r.clubs[c.ID] = &cp
	return nil
}

func (r *fakeClubRepo) GetByID(_ context.Context, id int) (*models.Club, error) {
	c, ok := r.clubs[id]
	if !ok {
		return nil, repositories.ErrClubNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClubRepo) GetByName(_ context.Context, name string) (*models.Club, error) {
	for _, c := range r.clubs {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrClubNotFound
}

func (r *fakeClubRepo) UpdateLogoKey(_ context.Context, id int, key *string) error {
	c, ok := r.clubs[id]
	if !ok {
		return repositories.ErrClubNotFound
	}
	c.LogoKey = key
	return nil
}

func (r *fakeClubRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.clubs[id]; !ok {
		return repositories.ErrClubNotFound
	}
	delete(r.clubs, id)
	return nil
}

func (r *fakeClubRepo) name(id int) string {
	if c, ok := r.clubs[id]; ok {
		return c.Name
	}
	return ""
}

type fakePlaceRepo struct {
	repositories.PlaceRepository
	ensured []models.Place
}

func (r *fakePlaceRepo) WithTx(repositories.SQLExecutor) repositories.PlaceRepository { return r }

func (r *fakePlaceRepo) Ensure(_ context.Context, p models.Place) error {
	r.ensured = append(r.ensured, p)
	return nil
}

// fakeAffiliationRepo keeps affiliation rows in memory, keyed by (person, club) like the table.
type fakeAffiliationRepo struct {
	kind    models.AffiliationKind
	rows    []models.Affiliation
	clubs   *fakeClubRepo
	persons func(id int) (models.Person, bool)
}

func (r *fakeAffiliationRepo) WithTx(repositories.SQLExecutor) repositories.AffiliationRepository {
	return r
}

func (r *fakeAffiliationRepo) Kind() models.AffiliationKind { return r.kind }

func (r *fakeAffiliationRepo) ListByPerson(_ context.Context, personID int) ([]models.Affiliation, error) {
	out := make([]models.Affiliation, 0)
	for _, a := range r.rows {
		if a.PersonID == personID {
			a.ClubName = r.clubs.name(a.ClubID)
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From.Before(out[j].From) })
	return out, nil
}

func (r *fakeAffiliationRepo) ListByPersons(ctx context.Context, ids []int) (map[int][]models.Affiliation, error) {
	out := make(map[int][]models.Affiliation, len(ids))
	for _, id := range ids {
		rows, _ := r.ListByPerson(ctx, id)
		if len(rows) > 0 {
			out[id] = rows
		}
	}
	return out, nil
}

func (r *fakeAffiliationRepo) Insert(_ context.Context, a *models.Affiliation) error {
	for _, existing := range r.rows {
		if existing.PersonID == a.PersonID && existing.ClubID == a.ClubID {
			return repositories.ErrAffiliationConflict
		}
	}
	r.rows = append(r.rows, *a)
	return nil
}

func (r *fakeAffiliationRepo) UpdateRange(_ context.Context, a *models.Affiliation) error {
	for i, existing := range r.rows {
		if existing.PersonID == a.PersonID && existing.ClubID == a.ClubID {
			r.rows[i].From = a.From
			r.rows[i].To = a.To
			return nil
		}
	}
	return repositories.ErrAffiliationNotFound
}

func (r *fakeAffiliationRepo) ListCurrentMembers(_ context.Context, clubID int) ([]models.Person, error) {
	out := make([]models.Person, 0)
	for _, a := range r.rows {
		if a.ClubID == clubID && a.To == nil && r.persons != nil {
			if p, ok := r.persons(a.PersonID); ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r *fakeAffiliationRepo) DeleteByPerson(_ context.Context, personID int) error {
	return r.deleteWhere(func(a models.Affiliation) bool { return a.PersonID == personID })
}

func (r *fakeAffiliationRepo) DeleteByClub(_ context.Context, clubID int) error {
	return r.deleteWhere(func(a models.Affiliation) bool { return a.ClubID == clubID })
}

func (r *fakeAffiliationRepo) deleteWhere(match func(models.Affiliation) bool) error {
	kept := r.rows[:0]
	for _, a := range r.rows {
		if !match(a) {
			kept = append(kept, a)
		}
	}
	r.rows = kept
	return nil
}

type fakePlayerRepo struct {
	repositories.PlayerRepository
	players map[int]models.Player
	nextID  int
}

func newFakePlayerRepo(players ...models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{players: map[int]models.Player{}, nextID: 1000}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

func (r *fakePlayerRepo) WithTx(repositories.SQLExecutor) repositories.PlayerRepository { return r }

func (r *fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	for _, existing := range r.players {
		if existing.NationalID == p.NationalID {
			return repositories.ErrPersonNationalIDConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.players[p.ID] = *p
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *fakePlayerRepo) GetByNationalID(_ context.Context, nid string) (*models.Player, error) {
	for _, p := range r.players {
		if p.NationalID == nid {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.Player, error) {
	out := make(map[int]*models.Player, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) List(_ context.Context, _ models.PersonFilter) ([]models.Player, error) {
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, p *models.Player) error {
	if _, ok := r.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.players[p.ID] = *p
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

func (r *fakePlayerRepo) person(id int) (models.Person, bool) {
	p, ok := r.players[id]
	return p.Person, ok
}

type fakePairRepo struct {
	repositories.PairRepository
	pairs  map[int]models.Pair
	nextID int
}

func newFakePairRepo(pairs ...models.Pair) *fakePairRepo {
	r := &fakePairRepo{pairs: map[int]models.Pair{}, nextID: 500}
	for _, p := range pairs {
		r.pairs[p.ID] = p
	}
	return r
}

func (r *fakePairRepo) WithTx(repositories.SQLExecutor) repositories.PairRepository { return r }

func (r *fakePairRepo) Create(_ context.Context, p *models.Pair) error {
	r.nextID++
	p.ID = r.nextID
	stored := *p
	stored.Player1, stored.Player2 = nil, nil
	r.pairs[p.ID] = stored
	return nil
}

func (r *fakePairRepo) GetByID(_ context.Context, id int) (*models.Pair, error) {
	p, ok := r.pairs[id]
	if !ok {
		return nil, repositories.ErrPairNotFound
	}
	return &p, nil
}

func (r *fakePairRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.Pair, error) {
	out := make(map[int]*models.Pair, len(ids))
	for _, id := range ids {
		if p, ok := r.pairs[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakePairRepo) FindByMembers(_ context.Context, a, b int) (*models.Pair, error) {
	want := models.Pair{Player1ID: a, Player2ID: b}
	for _, p := range r.pairs {
		if p.SameMembers(want) {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPairNotFound
}

func (r *fakePairRepo) List(_ context.Context, _, _ int) ([]models.Pair, error) {
	out := make([]models.Pair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePairRepo) ListByPlayer(_ context.Context, playerID int) ([]models.Pair, error) {
	out := make([]models.Pair, 0)
	for _, p := range r.pairs {
		if p.HasMember(playerID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePairRepo) Update(_ context.Context, p *models.Pair) error {
	if _, ok := r.pairs[p.ID]; !ok {
		return repositories.ErrPairNotFound
	}
	stored := *p
	stored.Player1, stored.Player2 = nil, nil
	r.pairs[p.ID] = stored
	return nil
}

func (r *fakePairRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.pairs[id]; !ok {
		return repositories.ErrPairNotFound
	}
	delete(r.pairs, id)
	return nil
}

type fakeMatchRepo struct {
	repositories.MatchRepository
	matches []models.Match
	nextID  int
}

func (r *fakeMatchRepo) WithTx(repositories.SQLExecutor) repositories.MatchRepository { return r }

func (r *fakeMatchRepo) Create(_ context.Context, m *models.Match) error {
	r.nextID++
	m.ID = r.nextID
	r.matches = append(r.matches, stripMatch(*m))
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) Update(_ context.Context, m *models.Match) error {
	for i := range r.matches {
		if r.matches[i].ID == m.ID && r.matches[i].TournamentID == m.TournamentID {
			r.matches[i] = stripMatch(*m)
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	before := len(r.matches)
	r.deleteWhere(func(m models.Match) bool { return m.ID == id })
	if len(r.matches) == before {
		return repositories.ErrMatchNotFound
	}
	return nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, id int) ([]models.Match, error) {
	return r.where(func(m models.Match) bool { return m.TournamentID == id }), nil
}

func (r *fakeMatchRepo) ListByPlayer(_ context.Context, id int) ([]models.Match, error) {
	return r.where(func(m models.Match) bool { return isRef(m.Player1ID, id) || isRef(m.Player2ID, id) }), nil
}

func (r *fakeMatchRepo) ListByPair(_ context.Context, id int) ([]models.Match, error) {
	return r.where(func(m models.Match) bool { return isRef(m.Pair1ID, id) || isRef(m.Pair2ID, id) }), nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, id int) (int, error) {
	list, _ := r.ListByTournament(ctx, id)
	return len(list), nil
}

func (r *fakeMatchRepo) DeleteByTournament(_ context.Context, id int) error {
	r.deleteWhere(func(m models.Match) bool { return m.TournamentID == id })
	return nil
}

func (r *fakeMatchRepo) DeleteByPlayer(_ context.Context, id int) error {
	r.deleteWhere(func(m models.Match) bool { return isRef(m.Player1ID, id) || isRef(m.Player2ID, id) })
	return nil
}

func (r *fakeMatchRepo) DeleteByPair(_ context.Context, id int) error {
	r.deleteWhere(func(m models.Match) bool { return isRef(m.Pair1ID, id) || isRef(m.Pair2ID, id) })
	return nil
}

func (r *fakeMatchRepo) where(keep func(models.Match) bool) []models.Match {
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *fakeMatchRepo) deleteWhere(drop func(models.Match) bool) {
	kept := make([]models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if !drop(m) {
			kept = append(kept, m)
		}
	}
	r.matches = kept
}

// stripMatch drops loaded relations so the fake stores what a table row holds, court join aside.
func stripMatch(m models.Match) models.Match {
	m.Player1, m.Player2, m.Pair1, m.Pair2 = nil, nil, nil, nil
	return m
}

func isRef(ref *int, id int) bool {
	return ref != nil && *ref == id
}

type fakeCategoryRepo struct {
	repositories.CategoryRepository
	categories  map[int]models.Category
	nextID      int
	tournaments *fakeTournamentRepo
	deleted     []int
}

func (r *fakeCategoryRepo) WithTx(repositories.SQLExecutor) repositories.CategoryRepository { return r }

func (r *fakeCategoryRepo) FindOrCreate(_ context.Context, c *models.Category) error {
	for id, existing := range r.categories {
		if existing.Type == c.Type && existing.AgeLimit == c.AgeLimit && existing.SexLimit == c.SexLimit {
			c.ID = id
			return nil
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) DeleteIfOrphaned(_ context.Context, id int) (bool, error) {
	for _, t := range r.tournaments.tournaments {
		if t.CategoryID == id {
			return false, nil
		}
	}
	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	r.deleted = append(r.deleted, id)
	return true, nil
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	tournaments map[int]models.Tournament
	categories  *fakeCategoryRepo
	clubs       *fakeClubRepo
	nextID      int
}

func newFakeTournamentRepos(clubs *fakeClubRepo) (*fakeTournamentRepo, *fakeCategoryRepo) {
	tr := &fakeTournamentRepo{tournaments: map[int]models.Tournament{}, clubs: clubs, nextID: 10}
	cr := &fakeCategoryRepo{categories: map[int]models.Category{}, tournaments: tr}
	tr.categories = cr
	return tr, cr
}

func (r *fakeTournamentRepo) WithTx(repositories.SQLExecutor) repositories.TournamentRepository {
	return r
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	r.nextID++
	t.ID = r.nextID
	r.tournaments[t.ID] = models.Tournament{ID: t.ID, Name: t.Name, ClubID: t.ClubID, CategoryID: t.CategoryID}
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cat := r.categories.categories[t.CategoryID]
	t.Category = &cat
	t.Club = &models.Club{ID: t.ClubID, Name: r.clubs.name(t.ClubID)}
	return &t, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.ClubID != nil && t.ClubID != *filter.ClubID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = models.Tournament{ID: t.ID, Name: t.Name, ClubID: t.ClubID, CategoryID: t.CategoryID}
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

// add stores a tournament with a fresh or existing category.
func (r *fakeTournamentRepo) add(id, clubID int, name string, category models.Category) {
	_ = r.categories.FindOrCreate(context.Background(), &category)
	r.tournaments[id] = models.Tournament{ID: id, Name: name, ClubID: clubID, CategoryID: category.ID}
}

type fakeCourtRepo struct {
	repositories.CourtRepository
	courts []models.Court
}

func (r *fakeCourtRepo) WithTx(repositories.SQLExecutor) repositories.CourtRepository { return r }

func (r *fakeCourtRepo) ListByClub(_ context.Context, clubID int) ([]models.Court, error) {
	out := make([]models.Court, 0)
	for _, c := range r.courts {
		if c.ClubID == clubID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourtRepo) DeleteByClub(_ context.Context, clubID int) error {
	kept := make([]models.Court, 0)
	for _, c := range r.courts {
		if c.ClubID != clubID {
			kept = append(kept, c)
		}
	}
	r.courts = kept
	return nil
}

type fakeMeetingRepo struct {
	repositories.MeetingRepository
	deletedClubs []int
}

func (r *fakeMeetingRepo) WithTx(repositories.SQLExecutor) repositories.MeetingRepository { return r }

func (r *fakeMeetingRepo) DeleteByClub(_ context.Context, clubID int) error {
	r.deletedClubs = append(r.deletedClubs, clubID)
	return nil
}

type fakeEquipmentRepo struct {
	repositories.EquipmentRepository
	clearedClubs []int
}

func (r *fakeEquipmentRepo) WithTx(repositories.SQLExecutor) repositories.EquipmentRepository {
	return r
}

func (r *fakeEquipmentRepo) RemoveAllFromClub(_ context.Context, clubID int) error {
	r.clearedClubs = append(r.clearedClubs, clubID)
	return nil
}

// fakeViewCache is a map-backed match view cache that counts invalidations.
type fakeViewCache struct {
	entries           map[int][]models.MatchView
	invalidatedAll    int
	invalidatedByTour []int
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{entries: map[int][]models.MatchView{}}
}

func (c *fakeViewCache) GetTournamentMatches(_ context.Context, id int) ([]models.MatchView, bool, error) {
	v, ok := c.entries[id]
	return v, ok, nil
}

func (c *fakeViewCache) SetTournamentMatches(_ context.Context, id int, views []models.MatchView) error {
	c.entries[id] = views
	return nil
}

func (c *fakeViewCache) InvalidateTournament(_ context.Context, id int) error {
	delete(c.entries, id)
	c.invalidatedByTour = append(c.invalidatedByTour, id)
	return nil
}

func (c *fakeViewCache) InvalidateAll(context.Context) error {
	c.entries = map[int][]models.MatchView{}
	c.invalidatedAll++
	return nil
}

type publishedEvent struct {
	tournamentID int
	eventType    string
	payload      interface{}
}

type fakeNotifier struct {
	events []publishedEvent
}

func (n *fakeNotifier) PublishMatchEvent(tournamentID int, eventType string, payload interface{}) {
	n.events = append(n.events, publishedEvent{tournamentID, eventType, payload})
}

type fakeUploader struct {
	uploaded map[string]string
	deleted  []string
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if u.uploaded == nil {
		u.uploaded = map[string]string{}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.uploaded[key] = contentType + ":" + string(data)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// testEnv wires every fake around three clubs and four players.
type testEnv struct {
	tx           *fakeTx
	clubs        *fakeClubRepo
	places       *fakePlaceRepo
	players      *fakePlayerRepo
	pairs        *fakePairRepo
	matches      *fakeMatchRepo
	tournaments  *fakeTournamentRepo
	categories   *fakeCategoryRepo
	courts       *fakeCourtRepo
	represents   *fakeAffiliationRepo
	coaching     *fakeAffiliationRepo
	meetings     *fakeMeetingRepo
	transactions *fakeTransactionRepo
	equipment    *fakeEquipmentRepo
	coaches      *fakeCoachRepo
	trainings    *fakeTrainingRepo
	views        *fakeViewCache
	notifier     *fakeNotifier
}

func newTestEnv() *testEnv {
	clubs := newFakeClubRepo(
		models.Club{ID: 1, Name: "TK Mladost", Email: "info@tkmladost.hr"},
		models.Club{ID: 2, Name: "TK Split", Email: "ured@tksplit.hr"},
		models.Club{ID: 3, Name: "TK Zagreb", Email: "tk@zagreb.hr"},
	)
	players := newFakePlayerRepo(
		testPlayer(1, "11111111111", "Ana", "Horvat"),
		testPlayer(2, "22222222222", "Iva", "Babic"),
		testPlayer(3, "33333333333", "Mia", "Kovac"),
		testPlayer(4, "44444444444", "Lea", "Novak"),
	)
	tournaments, categories := newFakeTournamentRepos(clubs)
	return &testEnv{
		tx:          &fakeTx{},
		clubs:       clubs,
		places:      &fakePlaceRepo{},
		players:     players,
		pairs:       newFakePairRepo(),
		matches:     &fakeMatchRepo{},
		tournaments: tournaments,
		categories:  categories,
		courts: &fakeCourtRepo{courts: []models.Court{
			{ID: 1, ClubID: 1, Name: "Centralni"},
			{ID: 2, ClubID: 1, Name: "Teren 2"},
			{ID: 3, ClubID: 2, Name: "Centralni"},
		}},
		represents:   &fakeAffiliationRepo{kind: models.AffiliationRepresents, clubs: clubs, persons: players.person},
		coaching:     &fakeAffiliationRepo{kind: models.AffiliationCoaches, clubs: clubs},
		meetings:     &fakeMeetingRepo{},
		transactions: newFakeTransactionRepo(),
		equipment:    &fakeEquipmentRepo{},
		coaches:      &fakeCoachRepo{coaches: map[int]models.Coach{}},
		trainings:    newFakeTrainingRepo(),
		views:        newFakeViewCache(),
		notifier:     &fakeNotifier{},
	}
}

func testPlayer(id int, nationalID, name, surname string) models.Player {
	return models.Player{Person: models.Person{ID: id, NationalID: nationalID, Name: name, Surname: surname, Sex: models.SexFemale}}
}

func (e *testEnv) playerService(policy ledger.RejoinPolicy) PlayerService {
	return NewPlayerService(e.tx, e.players, e.pairs, e.matches, e.tournaments, e.clubs, e.places, e.represents, e.views, policy, discardLogger())
}

func (e *testEnv) pairService() PairService {
	return NewPairService(e.tx, e.pairs, e.players, e.matches, e.tournaments, e.views, discardLogger())
}

func (e *testEnv) matchService() MatchService {
	return NewMatchService(e.tx, e.matches, e.tournaments, e.courts, e.players, e.pairs, e.views, e.notifier, discardLogger())
}

func (e *testEnv) tournamentService() TournamentService {
	return NewTournamentService(e.tx, e.tournaments, e.categories, e.clubs, e.matches, e.views, discardLogger())
}

func (e *testEnv) clubService(uploader storage.FileUploader) ClubService {
	return NewClubService(e.tx, ClubRepositories{
		Clubs:        e.clubs,
		Places:       e.places,
		Courts:       e.courts,
		Equipment:    e.equipment,
		Meetings:     e.meetings,
		Transactions: e.transactions,
		Represents:   e.represents,
		Coaching:     e.coaching,
		Tournaments:  e.tournaments,
		Matches:      e.matches,
		Categories:   e.categories,
	}, uploader, e.views, discardLogger())
}

// singlesMatch stores a singles match on court 1 of club 1.
func (e *testEnv) singlesMatch(tournamentID, host, guest int, result string, at time.Time) models.Match {
	m := models.Match{
		TournamentID: tournamentID,
		CourtID:      1,
		Court:        &models.Court{ID: 1, ClubID: 1, Name: "Centralni"},
		Timestamp:    at,
		Result:       result,
		Player1ID:    intPtr(host),
		Player2ID:    intPtr(guest),
	}
	_ = e.matches.Create(context.Background(), &m)
	return m
}

func (e *testEnv) doublesMatch(tournamentID, host, guest int, result string, at time.Time) models.Match {
	m := models.Match{
		TournamentID: tournamentID,
		CourtID:      1,
		Court:        &models.Court{ID: 1, ClubID: 1, Name: "Centralni"},
		Timestamp:    at,
		Result:       result,
		Pair1ID:      intPtr(host),
		Pair2ID:      intPtr(guest),
	}
	_ = e.matches.Create(context.Background(), &m)
	return m
}

func (e *testEnv) coachService() CoachService {
	return NewCoachService(e.tx, e.coaches, e.trainings, e.clubs, e.places, e.coaching, ledger.RejoinReopen, discardLogger())
}

func (e *testEnv) trainingService() TrainingService {
	return NewTrainingService(e.tx, e.trainings, e.coaches, e.players)
}

func (e *testEnv) transactionService() TransactionService {
	return NewTransactionService(e.transactions, e.clubs, &fakePersonRepo{players: e.players, coaches: e.coaches})
}

type fakeTrainingRepo struct {
	repositories.TrainingRepository
	trainings map[int]models.Training
	nextID    int
}

func newFakeTrainingRepo() *fakeTrainingRepo {
	return &fakeTrainingRepo{trainings: map[int]models.Training{}, nextID: 300}
}

func (r *fakeTrainingRepo) WithTx(repositories.SQLExecutor) repositories.TrainingRepository { return r }

func (r *fakeTrainingRepo) store(t *models.Training) {
	cp := *t
	cp.PlayerIDs = append([]int(nil), t.PlayerIDs...)
	cp.Coach, cp.Players = "", nil
	r.trainings[t.ID] = cp
}

func (r *fakeTrainingRepo) Create(_ context.Context, t *models.Training) error {
	r.nextID++
	t.ID = r.nextID
	r.store(t)
	return nil
}

func (r *fakeTrainingRepo) GetByID(_ context.Context, id int) (*models.Training, error) {
	t, ok := r.trainings[id]
	if !ok {
		return nil, repositories.ErrTrainingNotFound
	}
	t.PlayerIDs = append([]int(nil), t.PlayerIDs...)
	return &t, nil
}

func (r *fakeTrainingRepo) ListByCoach(_ context.Context, coachID int) ([]models.Training, error) {
	out := make([]models.Training, 0)
	for _, t := range r.trainings {
		if t.CoachID == coachID {
			t.PlayerIDs = append([]int(nil), t.PlayerIDs...)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTrainingRepo) Update(_ context.Context, t *models.Training) error {
	existing, ok := r.trainings[t.ID]
	if !ok || existing.CoachID != t.CoachID {
		return repositories.ErrTrainingNotFound
	}
	r.store(t)
	return nil
}

func (r *fakeTrainingRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.trainings[id]; !ok {
		return repositories.ErrTrainingNotFound
	}
	delete(r.trainings, id)
	return nil
}

func (r *fakeTrainingRepo) DeleteByCoach(_ context.Context, coachID int) error {
	for id, t := range r.trainings {
		if t.CoachID == coachID {
			delete(r.trainings, id)
		}
	}
	return nil
}

type fakeTransactionRepo struct {
	repositories.TransactionRepository
	transactions map[int]models.Transaction
	nextID       int
	deletedClubs []int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[int]models.Transaction{}, nextID: 700}
}

func (r *fakeTransactionRepo) WithTx(repositories.SQLExecutor) repositories.TransactionRepository {
	return r
}

func (r *fakeTransactionRepo) Create(_ context.Context, t *models.Transaction) error {
	r.nextID++
	t.ID = r.nextID
	cp := *t
	cp.Person = nil
	r.transactions[t.ID] = cp
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id int) (*models.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return &t, nil
}

func (r *fakeTransactionRepo) ListByClub(_ context.Context, clubID int) ([]models.Transaction, error) {
	out := make([]models.Transaction, 0)
	for _, t := range r.transactions {
		if t.ClubID == clubID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, t *models.Transaction) error {
	existing, ok := r.transactions[t.ID]
	if !ok || existing.ClubID != t.ClubID {
		return repositories.ErrTransactionNotFound
	}
	cp := *t
	cp.Person = nil
	r.transactions[t.ID] = cp
	return nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.transactions[id]; !ok {
		return repositories.ErrTransactionNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *fakeTransactionRepo) DeleteByClub(_ context.Context, clubID int) error {
	r.deletedClubs = append(r.deletedClubs, clubID)
	for id, t := range r.transactions {
		if t.ClubID == clubID {
			delete(r.transactions, id)
		}
	}
	return nil
}

// fakePersonRepo looks persons up among the fake players and coaches.
type fakePersonRepo struct {
	repositories.PersonRepository
	players *fakePlayerRepo
	coaches *fakeCoachRepo
}

func (r *fakePersonRepo) WithTx(repositories.SQLExecutor) repositories.PersonRepository { return r }

func (r *fakePersonRepo) all() []models.Person {
	out := make([]models.Person, 0, len(r.players.players)+len(r.coaches.coaches))
	for _, p := range r.players.players {
		out = append(out, p.Person)
	}
	for _, c := range r.coaches.coaches {
		out = append(out, c.Person)
	}
	return out
}

func (r *fakePersonRepo) GetByNationalID(_ context.Context, nid string) (*models.Person, error) {
	for _, p := range r.all() {
		if p.NationalID == nid {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPersonNotFound
}

func (r *fakePersonRepo) ListByIDs(_ context.Context, ids []int) ([]models.Person, error) {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]models.Person, 0, len(ids))
	for _, p := range r.all() {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}
