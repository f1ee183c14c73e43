package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-clubs/live"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	"github.com/Dosada05/tennis-clubs/services"
)

type fakeTournamentService struct {
	services.TournamentService
	filter repositories.ListTournamentsFilter
}

func (s *fakeTournamentService) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	if id != 20 {
		return nil, services.ErrTournamentNotFound
	}
	return &models.Tournament{ID: 20, Name: "Zagreb Open"}, nil
}

func (s *fakeTournamentService) ListTournaments(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	s.filter = filter
	return []models.Tournament{}, nil
}

func TestTournamentHandler_ListFilter(t *testing.T) {
	svc := &fakeTournamentService{}
	h := NewTournamentHandler(svc)
	r := chi.NewRouter()
	r.Get("/tournaments", h.ListTournaments)

	rec := serve(r, http.MethodGet, "/tournaments?club_id=3&category_type=doubles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.ClubID)
	assert.Equal(t, 3, *svc.filter.ClubID)
	require.NotNil(t, svc.filter.CategoryType)
	assert.Equal(t, models.CategoryDoubles, *svc.filter.CategoryType)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/tournaments?club_id=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/tournaments?category_type=mixed", "").Code)
}

func TestWebSocketHandler_StreamsMatchEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := live.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	h := NewWebSocketHandler(hub, &fakeTournamentService{}, []string{"*"})
	r := chi.NewRouter()
	r.Get("/ws/tournaments/{tournamentID}", h.ServeWs)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tournaments/20"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	room := live.TournamentRoom(20)
	require.Eventually(t, func() bool { return hub.ClientCount(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishMatchEvent(20, live.EventMatchCreated, map[string]int{"id": 5})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg live.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, live.EventMatchCreated, msg.Type)
	assert.Equal(t, room, msg.RoomID)
}

func TestWebSocketHandler_UnknownTournament(t *testing.T) {
	hub := live.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewWebSocketHandler(hub, &fakeTournamentService{}, nil)
	r := chi.NewRouter()
	r.Get("/ws/tournaments/{tournamentID}", h.ServeWs)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/ws/tournaments/21", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/ws/tournaments/abc", "").Code)
}
