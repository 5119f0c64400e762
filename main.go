package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/config"
	"github.com/StonerSensei/nlp-analytics/pkg/database"
	"github.com/StonerSensei/nlp-analytics/pkg/handlers"
	"github.com/StonerSensei/nlp-analytics/pkg/llm"
	"github.com/StonerSensei/nlp-analytics/pkg/logging"
	"github.com/StonerSensei/nlp-analytics/pkg/middleware"
	"github.com/StonerSensei/nlp-analytics/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("generator_url", cfg.LLM.BaseURL),
		zap.String("generator_model", cfg.LLM.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	generator, err := llm.NewClient(&llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.RequestTimeout(),
	}, logger)
	if err != nil {
		logger.Fatal("failed to create generator client", zap.Error(err))
	}

	analyzeService := services.NewAnalyzeService(cfg.Analyze, logger)
	uploadService := services.NewUploadService(analyzeService, database.NewLoader(db, logger), logger)
	queryService := services.NewQueryService(db, generator, cfg.Query, cfg.LLM.MaxRetries, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, generator, cfg.LLM.Model, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(analyzeService, uploadService, cfg.Analyze.MaxUploadBytes, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux)
	handlers.NewDatabaseHandler(db, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting nlp-analytics",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLogger picks the zap preset for the environment: readable console output
// locally, JSON in deployed environments.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
