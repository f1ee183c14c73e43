package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tennis-clubs/cache"
	"github.com/Dosada05/tennis-clubs/config"
	"github.com/Dosada05/tennis-clubs/db"
	"github.com/Dosada05/tennis-clubs/handlers"
	"github.com/Dosada05/tennis-clubs/live"
	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
	api "github.com/Dosada05/tennis-clubs/routes"
	"github.com/Dosada05/tennis-clubs/services"
	"github.com/Dosada05/tennis-clubs/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("rejoin_policy", string(cfg.RejoinPolicy)),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	views := matchViewCache(ctx, cfg, logger)

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 storage is not configured, club logo uploads are disabled")
	}

	if cfg.Admin.Email == "" || cfg.Admin.PasswordHash == "" {
		logger.Warn("administrator credentials are not configured, login is disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("live match hub started")

	tx := repositories.NewTransactor(dbConn, logger)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	placeRepo := repositories.NewPostgresPlaceRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	equipmentRepo := repositories.NewPostgresEquipmentRepository(dbConn)
	meetingRepo := repositories.NewPostgresMeetingRepository(dbConn)
	transactionRepo := repositories.NewPostgresTransactionRepository(dbConn)
	personRepo := repositories.NewPostgresPersonRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	coachRepo := repositories.NewPostgresCoachRepository(dbConn)
	trainingRepo := repositories.NewPostgresTrainingRepository(dbConn)
	pairRepo := repositories.NewPostgresPairRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	representsRepo := repositories.NewPostgresAffiliationRepository(dbConn, models.AffiliationRepresents)
	coachingRepo := repositories.NewPostgresAffiliationRepository(dbConn, models.AffiliationCoaches)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(cfg.Admin, cfg.JWTSecretKey)
	clubService := services.NewClubService(tx, services.ClubRepositories{
		Clubs:        clubRepo,
		Places:       placeRepo,
		Courts:       courtRepo,
		Equipment:    equipmentRepo,
		Meetings:     meetingRepo,
		Transactions: transactionRepo,
		Represents:   representsRepo,
		Coaching:     coachingRepo,
		Tournaments:  tournamentRepo,
		Matches:      matchRepo,
		Categories:   categoryRepo,
	}, uploader, views, logger)
	courtService := services.NewCourtService(courtRepo, clubRepo, views, logger)
	equipmentService := services.NewEquipmentService(tx, equipmentRepo, clubRepo)
	meetingService := services.NewMeetingService(tx, meetingRepo, personRepo, clubRepo)
	transactionService := services.NewTransactionService(transactionRepo, clubRepo, personRepo)
	playerService := services.NewPlayerService(tx, playerRepo, pairRepo, matchRepo, tournamentRepo, clubRepo, placeRepo,
		representsRepo, views, cfg.RejoinPolicy, logger)
	coachService := services.NewCoachService(tx, coachRepo, trainingRepo, clubRepo, placeRepo, coachingRepo, cfg.RejoinPolicy, logger)
	trainingService := services.NewTrainingService(tx, trainingRepo, coachRepo, playerRepo)
	pairService := services.NewPairService(tx, pairRepo, playerRepo, matchRepo, tournamentRepo, views, logger)
	tournamentService := services.NewTournamentService(tx, tournamentRepo, categoryRepo, clubRepo, matchRepo, views, logger)
	matchService := services.NewMatchService(tx, matchRepo, tournamentRepo, courtRepo, playerRepo, pairRepo, views, hub, logger)
	dashboardService := services.NewDashboardService(statsRepo)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Club:        handlers.NewClubHandler(clubService),
		Court:       handlers.NewCourtHandler(courtService),
		Equipment:   handlers.NewEquipmentHandler(equipmentService),
		Meeting:     handlers.NewMeetingHandler(meetingService),
		Transaction: handlers.NewTransactionHandler(transactionService),
		Player:      handlers.NewPlayerHandler(playerService),
		Coach:       handlers.NewCoachHandler(coachService),
		Training:    handlers.NewTrainingHandler(trainingService),
		Pair:        handlers.NewPairHandler(pairService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Match:       handlers.NewMatchHandler(matchService),
		WebSocket:   handlers.NewWebSocketHandler(hub, tournamentService, cfg.CORSAllowedOrigins),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		// Hijacked websocket connections are not tracked by Shutdown, the hub closes them.
		stop()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// matchViewCache returns the Redis backed cache, or a no-op one when Redis is unset or unreachable.
func matchViewCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.MatchViewCache {
	if cfg.Redis.Addr == "" {
		logger.Info("redis is not configured, match views are not cached")
		return cache.NewNoopMatchViewCache()
	}

	client := cache.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, client); err != nil {
		logger.Warn("redis is unreachable, match views are not cached", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
		_ = client.Close()
		return cache.NewNoopMatchViewCache()
	}

	logger.Info("match view cache connected", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.CacheTTL))
	return cache.NewRedisMatchViewCache(client, cfg.CacheTTL, logger)
}
