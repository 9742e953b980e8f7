// Command api serves the analyst pick tracker over HTTP.
//
// @title Analyst Tracker API
// @version 1.0
// @description Tracks MMA analyst predictions, official results and analyst accuracy.
// @BasePath /api/v1
// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/chatmma/analyst-tracker/docs"
	"github.com/chatmma/analyst-tracker/internal/config"
	"github.com/chatmma/analyst-tracker/internal/handlers"
	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/worker"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// The model is optional. Without it extraction and any /ask question
	// that needs the model return 503; not-found and no-data replies still work.
	var (
		extractor logic.Extractor
		chatLLM   logic.LLM
	)
	if cfg.AnthropicAPIKey != "" {
		extractLLM, err := logic.NewAnthropicLLM(cfg.AnthropicAPIKey, cfg.ExtractionModel)
		if err != nil {
			return fmt.Errorf("init extraction model: %w", err)
		}
		extractor = logic.NewExtractor(extractLLM)

		askLLM, err := logic.NewAnthropicLLM(cfg.AnthropicAPIKey, cfg.ChatModel)
		if err != nil {
			return fmt.Errorf("init chat model: %w", err)
		}
		chatLLM = askLLM
	} else {
		sugar.Warn("Anthropic API key not set; extraction and model answers disabled")
	}

	events := logic.NewEventService(pool, logger)
	aliases := logic.NewAliasService(pool)
	picks := logic.NewPickService(pool, logger)
	results := logic.NewResultService(pool, logger)
	scoring := logic.NewScoringService(pool, rdb, cfg.ScoringCacheTTL, logger)
	analytics := logic.NewAnalyticsService(pool, logger)
	resolver := logic.NewResolver(logic.NewWeightedRatio(), aliases, picks, logic.ResolverOptions{
		Threshold: cfg.FuzzyThreshold,
		Floor:     cfg.NoCandidateFloor,
	}, logger)
	scraper := logic.NewChromeScraper(cfg.ChromePath, cfg.ScrapeTimeout, logger)
	ingest := logic.NewIngestService(pool, resolver, scraper, extractor, logger)

	jobs := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.ExtractWorkers,
		QueueSize:   cfg.ExtractQueueSize,
		JobTimeout:  cfg.ExtractJobTimeout,
		Retention:   cfg.ExtractJobRetention,
		Extract:     ingest.Prepare,
		Logger:      logger,
	})
	jobs.Start(ctx)
	defer jobs.Stop()

	h := handlers.New(handlers.Config{
		Postgres:       pool,
		Redis:          rdb,
		Logger:         logger,
		AdminTokenHash: cfg.AdminTokenHash,
		Events:         events,
		Aliases:        aliases,
		Picks:          picks,
		Results:        results,
		Scoring:        scoring,
		Analytics:      analytics,
		Export:         logic.NewExportService(pool, logger),
		Ingest:         ingest,
		Ask:            logic.NewAskService(pool, events, analytics, chatLLM, logger),
		Jobs:           jobs,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.NewRouter(h, handlers.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting HTTP server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	sugar.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err)
		return err
	}
	sugar.Info("Server stopped")
	return nil
}
