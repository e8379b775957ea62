package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contract-analyzer-backend/config"
	"contract-analyzer-backend/extract"
	"contract-analyzer-backend/handlers"
	"contract-analyzer-backend/jobs"
	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/logging"
	"contract-analyzer-backend/repository"
	"contract-analyzer-backend/service"
	"contract-analyzer-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Reasoning backend
	backend, err := llm.NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM backend", zap.Error(err))
	}

	extractor, err := extract.NewExtractor(ctx, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal("Failed to initialize text extractor", zap.Error(err))
	}

	contractService := service.NewContractService(
		service.WithBackend(backend),
		service.WithLogger(logger),
	)

	// Analysis history is optional
	historyService := service.NewHistoryService(service.HistoryWithLogger(logger))
	if cfg.HistoryEnabled() {
		db, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize Postgres", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Postgres connection established")

		documents, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
		logger.Info("Storage initialized", zap.String("type", cfg.Storage.Type))

		analysisRepo := repository.NewAnalysisRepository(db)
		historyService = service.NewHistoryService(
			service.HistoryWithStore(analysisRepo),
			service.HistoryWithDocuments(documents),
			service.HistoryWithLogger(logger),
		)

		if cfg.Retention.Days > 0 {
			retention := jobs.NewRetention(analysisRepo, documents, cfg.Retention.Days, logger)
			scheduler, err := retention.Start(cfg.Retention.Schedule)
			if err != nil {
				logger.Fatal("Failed to schedule retention purge", zap.Error(err))
			}
			defer scheduler.Stop()
			logger.Info("Retention purge scheduled",
				zap.Int("days", cfg.Retention.Days),
				zap.String("schedule", cfg.Retention.Schedule),
			)
		}
	} else {
		logger.Warn("DATABASE_URL not set, analysis history disabled")
	}

	contractHandler := handlers.NewContractHandler(contractService, historyService, extractor, logger)
	analysisHandler := handlers.NewAnalysisHandler(historyService, time.Now, logger)

	r := gin.New()
	r.Use(logging.GinLogger(logger), logging.GinRecovery(logger))
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	handlers.RegisterRoutes(r, contractHandler, analysisHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("llm_provider", cfg.LLM.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
