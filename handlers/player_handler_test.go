package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/ledger"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/services"
)

type fakePlayerService struct {
	services.PlayerService
	created    *services.PlayerInput
	filter     models.PersonFilter
	transfer   *services.AffiliationChangeInput
	transferFn func() (*models.AffiliationSummary, error)
}

func (s *fakePlayerService) CreatePlayer(_ context.Context, input services.PlayerInput) (*services.PlayerDetails, error) {
	s.created = &input
	if input.NationalID == "11111111111" {
		return nil, services.ErrNationalIDConflict
	}
	return &services.PlayerDetails{
		Player:       models.Player{Person: models.Person{ID: 7, NationalID: input.NationalID, Name: input.Name, Surname: input.Surname, Sex: input.Sex}},
		Affiliations: models.AffiliationSummary{PersonID: 7, Current: &models.ClubRef{ID: 1, Name: input.Club}},
	}, nil
}

func (s *fakePlayerService) GetPlayer(_ context.Context, id int) (*services.PlayerDetails, error) {
	if id != 7 {
		return nil, services.ErrPlayerNotFound
	}
	return &services.PlayerDetails{Player: models.Player{Person: models.Person{ID: 7, Name: "Ana"}}}, nil
}

func (s *fakePlayerService) ListPlayers(_ context.Context, filter models.PersonFilter) ([]services.PlayerDetails, error) {
	s.filter = filter
	return []services.PlayerDetails{}, nil
}

func (s *fakePlayerService) TransferPlayer(_ context.Context, id int, input services.AffiliationChangeInput) (*models.AffiliationSummary, error) {
	s.transfer = &input
	return s.transferFn()
}

func playerRouter(svc services.PlayerService) http.Handler {
	h := NewPlayerHandler(svc)
	r := chi.NewRouter()
	r.Get("/players", h.ListPlayers)
	r.Post("/players", h.CreatePlayer)
	r.Get("/players/{playerID}", h.GetPlayer)
	r.Post("/players/{playerID}/transfer", h.TransferPlayer)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlayerHandler_Create(t *testing.T) {
	svc := &fakePlayerService{}
	router := playerRouter(svc)

	rec := serve(router, http.MethodPost, "/players",
		`{"national_id":"55555555555","name":"Petra","surname":"Martic","sex":"FEMALE","club":"TK Split","club_from":"2021-03-01"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.created)
	assert.Equal(t, "TK Split", svc.created.Club)
	assert.Equal(t, "2021-03-01", svc.created.ClubFrom)

	player := decodeBody(t, rec)["player"].(map[string]interface{})
	assert.Equal(t, "55555555555", player["national_id"])
	affiliations := player["affiliations"].(map[string]interface{})
	assert.Equal(t, "TK Split", affiliations["current_club"].(map[string]interface{})["name"])
}

func TestPlayerHandler_CreateErrors(t *testing.T) {
	router := playerRouter(&fakePlayerService{})

	rec := serve(router, http.MethodPost, "/players", `{"national_id":"11111111111","name":"Ana","surname":"Horvat","sex":"FEMALE"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(router, http.MethodPost, "/players", `{"national_id":"55555555555","name":"Petra","surname":"Martic","sex":"X"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "sex")

	rec = serve(router, http.MethodPost, "/players", `{"national_id":"55555555555","name":"Petra","surname":"Martic","sex":"FEMALE","club_from":"1.3.2021."}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "club_from")
}

func TestPlayerHandler_Get(t *testing.T) {
	router := playerRouter(&fakePlayerService{})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/players/7", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/players/8", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/players/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/players/0", "").Code)
}

func TestPlayerHandler_ListFilter(t *testing.T) {
	svc := &fakePlayerService{}
	router := playerRouter(svc)

	rec := serve(router, http.MethodGet, "/players?surname=Horvat&sex=female&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Surname)
	assert.Equal(t, "Horvat", *svc.filter.Surname)
	require.NotNil(t, svc.filter.Sex)
	assert.Equal(t, models.SexFemale, *svc.filter.Sex)
	assert.Equal(t, 10, svc.filter.Limit)
	assert.Equal(t, 20, svc.filter.Offset)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/players?sex=unknown", "").Code)
}

func TestPlayerHandler_Transfer(t *testing.T) {
	svc := &fakePlayerService{transferFn: func() (*models.AffiliationSummary, error) {
		return &models.AffiliationSummary{PersonID: 7, Current: &models.ClubRef{ID: 2, Name: "TK Split"}}, nil
	}}
	router := playerRouter(svc)

	rec := serve(router, http.MethodPost, "/players/7/transfer", `{"club":"TK Split","date":"2022-06-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2022-06-01", svc.transfer.Date)
	assert.Contains(t, decodeBody(t, rec), "affiliations")

	svc.transferFn = func() (*models.AffiliationSummary, error) { return nil, ledger.ErrInvalidDateRange }
	rec = serve(router, http.MethodPost, "/players/7/transfer", `{"club":"TK Split","date":"2001-01-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	svc.transferFn = func() (*models.AffiliationSummary, error) { return nil, ledger.ErrNotFound }
	rec = serve(router, http.MethodPost, "/players/7/transfer", `{"club":"TK Split"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
