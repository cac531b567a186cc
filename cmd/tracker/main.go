package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/config"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/handler"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/cache"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/resilience"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/supabase"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "income-expense-tracker")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	catalogCache := cache.New[[]domain.Category](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Storage ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		metrics,
		logger,
	)

	accountStore := supabase.NewAccountStore(supabaseClient)
	transactionStore := supabase.NewTransactionStore(supabaseClient)
	transferStore := supabase.NewTransferStore(supabaseClient)
	categoryStore := supabase.NewCategoryStore(supabaseClient)
	userStore := supabase.NewUserStore(supabaseClient)

	// --- Services ---
	ledgerSvc := service.NewLedgerService(accountStore, transactionStore, transferStore, metrics, logger)
	accountSvc := service.NewAccountService(accountStore, logger)
	categorySvc := service.NewCategoryService(categoryStore, catalogCache, metrics, logger)
	authSvc := service.NewAuthService(userStore, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Ledger:     ledgerSvc,
		Accounts:   accountSvc,
		Categories: categorySvc,
		Auth:       authSvc,
	}, metrics, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
