// Command seed populates the shared category catalog with the default
// entries. Safe to run repeatedly: names already present are skipped.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/config"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/resilience"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/supabase"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("supabase")
	client := supabase.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		},
		metrics,
		logger,
	)
	store := supabase.NewCategoryStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	existing, err := store.List(ctx, "")
	if err != nil {
		logger.Fatal("failed to list categories", zap.Error(err))
	}
	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	var created, skipped int
	for _, req := range service.DefaultCategories() {
		if present[req.Name] {
			skipped++
			continue
		}
		_, err := store.Create(ctx, &domain.Category{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Type:      req.Type,
			Icon:      req.Icon,
			Color:     req.Color,
			CreatedAt: time.Now(),
		})
		if err != nil {
			logger.Fatal("failed to create category", zap.String("name", req.Name), zap.Error(err))
		}
		created++
	}

	logger.Info("seed complete", zap.Int("created", created), zap.Int("skipped", skipped))
}
