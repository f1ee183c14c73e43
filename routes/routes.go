package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tennis-clubs/handlers"
	"github.com/Dosada05/tennis-clubs/middleware"
	"github.com/Dosada05/tennis-clubs/services"
)

const requestTimeout = 30 * time.Second

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

type Handlers struct {
	Auth        *handlers.AuthHandler
	Club        *handlers.ClubHandler
	Court       *handlers.CourtHandler
	Equipment   *handlers.EquipmentHandler
	Meeting     *handlers.MeetingHandler
	Transaction *handlers.TransactionHandler
	Player      *handlers.PlayerHandler
	Coach       *handlers.CoachHandler
	Training    *handlers.TrainingHandler
	Pair        *handlers.PairHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	WebSocket   *handlers.WebSocketHandler
	Dashboard   *handlers.DashboardHandler
}

// SetupRoutes mounts the API on router. Reads are public; writes need an admin token.
func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := chi.Chain(
		middleware.Authenticate(opts.JWTSecret),
		middleware.Authorize(services.RoleAdmin),
	)

	// The websocket route stays outside the timeout middleware, which would cut the connection.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Post("/auth/login", h.Auth.Login)
		r.Get("/dashboard/stats", h.Dashboard.Stats)

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.Club.ListClubs)
			r.With(adminOnly...).Post("/", h.Club.CreateClub)

			r.Route("/{clubID}", func(r chi.Router) {
				r.Get("/", h.Club.GetClub)
				r.Get("/roster", h.Club.GetRoster)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly...)
					r.Put("/", h.Club.UpdateClub)
					r.Delete("/", h.Club.DeleteClub)
					r.Put("/logo", h.Club.UploadClubLogo)
				})

				r.Route("/courts", func(r chi.Router) {
					r.Get("/", h.Court.ListCourts)
					r.Get("/{courtID}", h.Court.GetCourt)
					r.Group(func(r chi.Router) {
						r.Use(adminOnly...)
						r.Post("/", h.Court.CreateCourt)
						r.Put("/{courtID}", h.Court.UpdateCourt)
						r.Delete("/{courtID}", h.Court.DeleteCourt)
					})
				})

				r.Route("/equipment", func(r chi.Router) {
					r.Get("/", h.Equipment.ListEquipment)
					r.Get("/{equipmentID}", h.Equipment.GetEquipment)
					r.Group(func(r chi.Router) {
						r.Use(adminOnly...)
						r.Post("/", h.Equipment.AddEquipment)
						r.Put("/{equipmentID}", h.Equipment.UpdateEquipment)
						r.Delete("/{equipmentID}", h.Equipment.RemoveEquipment)
					})
				})

				r.Route("/meetings", func(r chi.Router) {
					r.Get("/", h.Meeting.ListMeetings)
					r.Get("/{meetingID}", h.Meeting.GetMeeting)
					r.Group(func(r chi.Router) {
						r.Use(adminOnly...)
						r.Post("/", h.Meeting.CreateMeeting)
						r.Put("/{meetingID}", h.Meeting.UpdateMeeting)
						r.Delete("/{meetingID}", h.Meeting.DeleteMeeting)
					})
				})

				// Club finances are not public.
				r.Route("/transactions", func(r chi.Router) {
					r.Use(adminOnly...)
					r.Get("/", h.Transaction.ListTransactions)
					r.Get("/{transactionID}", h.Transaction.GetTransaction)
					r.Post("/", h.Transaction.CreateTransaction)
					r.Put("/{transactionID}", h.Transaction.UpdateTransaction)
					r.Delete("/{transactionID}", h.Transaction.DeleteTransaction)
				})
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Get("/{playerID}", h.Player.GetPlayer)
			r.Get("/{playerID}/singles-matches", h.Player.GetSinglesMatches)
			r.Get("/{playerID}/affiliations", h.Player.GetAffiliations)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", h.Player.CreatePlayer)
				r.Put("/{playerID}", h.Player.UpdatePlayer)
				r.Delete("/{playerID}", h.Player.DeletePlayer)
				r.Post("/{playerID}/transfer", h.Player.TransferPlayer)
				r.Post("/{playerID}/terminate", h.Player.TerminatePlayer)
			})
		})

		r.Route("/coaches", func(r chi.Router) {
			r.Get("/", h.Coach.ListCoaches)
			r.Get("/{coachID}", h.Coach.GetCoach)
			r.Get("/{coachID}/affiliations", h.Coach.GetAffiliations)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", h.Coach.CreateCoach)
				r.Put("/{coachID}", h.Coach.UpdateCoach)
				r.Delete("/{coachID}", h.Coach.DeleteCoach)
				r.Post("/{coachID}/transfer", h.Coach.TransferCoach)
				r.Post("/{coachID}/terminate", h.Coach.TerminateCoach)
			})

			r.Route("/{coachID}/training-sessions", func(r chi.Router) {
				r.Get("/", h.Training.ListTrainings)
				r.Get("/{trainingID}", h.Training.GetTraining)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly...)
					r.Post("/", h.Training.CreateTraining)
					r.Put("/{trainingID}", h.Training.UpdateTraining)
					r.Delete("/{trainingID}", h.Training.DeleteTraining)
				})
			})
		})

		r.Route("/doubles", func(r chi.Router) {
			r.Get("/", h.Pair.ListPairs)
			r.Get("/{pairID}", h.Pair.GetPair)
			r.Get("/{pairID}/doubles-matches", h.Pair.GetDoublesMatches)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly...)
				r.Post("/", h.Pair.CreatePair)
				r.Put("/{pairID}", h.Pair.UpdatePair)
				r.Delete("/{pairID}", h.Pair.DeletePair)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.With(adminOnly...).Post("/", h.Tournament.CreateTournament)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetTournament)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly...)
					r.Put("/", h.Tournament.UpdateTournament)
					r.Delete("/", h.Tournament.DeleteTournament)
				})

				r.Route("/matches", func(r chi.Router) {
					r.Get("/", h.Match.ListMatches)
					r.Get("/{matchID}", h.Match.GetMatch)
					r.Group(func(r chi.Router) {
						r.Use(adminOnly...)
						r.Post("/", h.Match.CreateMatch)
						r.Put("/{matchID}", h.Match.UpdateMatch)
						r.Delete("/{matchID}", h.Match.DeleteMatch)
					})
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
