package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/silat-bracket/brackets"
	"github.com/Dosada05/silat-bracket/config"
	"github.com/Dosada05/silat-bracket/db"
	"github.com/Dosada05/silat-bracket/handlers"
	"github.com/Dosada05/silat-bracket/middleware"
	"github.com/Dosada05/silat-bracket/repositories"
	"github.com/Dosada05/silat-bracket/routes"
	"github.com/Dosada05/silat-bracket/services"
	"github.com/Dosada05/silat-bracket/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage configured", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("object storage not configured, logo uploads disabled")
	}

	hub := brackets.NewHub(logger)
	go hub.Run()

	txRunner := repositories.NewTxRunner(conn)
	entryRepo := repositories.NewPostgresEntryRepository(conn)
	bracketRepo := repositories.NewPostgresBracketRepository(conn)
	matchRepo := repositories.NewPostgresMatchRepository(conn)
	competitorRepo := repositories.NewPostgresCompetitorRepository(conn)
	contingentRepo := repositories.NewPostgresContingentRepository(conn)
	categoryRepo := repositories.NewPostgresCategoryRepository(conn)
	officialRepo := repositories.NewPostgresOfficialRepository(conn)

	bracketService := services.NewBracketService(
		txRunner, entryRepo, bracketRepo, matchRepo, competitorRepo, officialRepo,
		brackets.NewSingleEliminationGenerator(), hub, logger,
	)
	matchService := services.NewMatchService(txRunner, matchRepo, bracketRepo, officialRepo, hub, logger)
	entryService := services.NewEntryService(entryRepo, competitorRepo)
	competitorService := services.NewCompetitorService(competitorRepo)
	contingentService := services.NewContingentService(contingentRepo, uploader, logger)
	categoryService := services.NewCategoryService(categoryRepo)
	officialService := services.NewOfficialService(officialRepo)

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := routes.InitRoutes(routes.Handlers{
		Bracket:    handlers.NewBracketHandler(bracketService),
		Match:      handlers.NewMatchHandler(matchService),
		Entry:      handlers.NewEntryHandler(entryService),
		Competitor: handlers.NewCompetitorHandler(competitorService),
		Contingent: handlers.NewContingentHandler(contingentService),
		Category:   handlers.NewCategoryHandler(categoryService),
		Official:   handlers.NewOfficialHandler(officialService),
		Websocket:  handlers.NewWebsocketHandler(hub, bracketService, logger),
	}, auth)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
