package service

import (
	"context"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var categoryTracer = otel.Tracer("service/categories")

const categoryCacheKey = "catalog"

// CategoryService manages the shared category catalog. The full list is
// cached: it is read on every transaction form and changes rarely.
type CategoryService struct {
	store   port.CategoryStore
	cache   port.Cache[[]domain.Category]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCategoryService creates the category service.
func NewCategoryService(store port.CategoryStore, cache port.Cache[[]domain.Category], metrics *observability.Metrics, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// ListCategories returns catalog entries, optionally filtered by type.
// A type filter also matches entries marked "both".
func (s *CategoryService) ListCategories(ctx context.Context, typ domain.CategoryType) ([]domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.ListCategories")
	defer span.End()

	all, ok := s.cache.Get(categoryCacheKey)
	if ok {
		s.metrics.IncrCacheHit("categories")
	} else {
		s.metrics.IncrCacheMiss("categories")
		var err error
		all, err = s.store.List(ctx, "")
		if err != nil {
			return nil, err
		}
		s.cache.Set(categoryCacheKey, all)
	}

	if typ == "" {
		return all, nil
	}
	filtered := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.Type == typ || c.Type == domain.CategoryBoth {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// GetCategory returns a single catalog entry.
func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.GetCategory")
	defer span.End()

	return s.store.Get(ctx, categoryID)
}

// CreateCategory adds a catalog entry.
func (s *CategoryService) CreateCategory(ctx context.Context, req *domain.CategoryRequest) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.CreateCategory")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if !domain.ValidCategoryType(req.Type) {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be income, expense or both"}
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Type:      req.Type,
		Icon:      req.Icon,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}
	if category.Icon == "" {
		category.Icon = "default"
	}
	if category.Color == "" {
		category.Color = "#6366f1"
	}

	created, err := s.store.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(categoryCacheKey)

	s.logger.Info("category created", zap.String("category_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateCategory edits a catalog entry.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID string, req *domain.CategoryRequest) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.UpdateCategory")
	defer span.End()

	category, err := s.store.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Type != "" {
		if !domain.ValidCategoryType(req.Type) {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be income, expense or both"}
		}
		category.Type = req.Type
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	if req.Color != "" {
		category.Color = req.Color
	}

	updated, err := s.store.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(categoryCacheKey)
	return updated, nil
}

// DeleteCategory removes a catalog entry. Transactions keep their category
// name as free text, so nothing else changes.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.DeleteCategory")
	defer span.End()

	if _, err := s.store.Get(ctx, categoryID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, categoryID); err != nil {
		return err
	}
	s.cache.Delete(categoryCacheKey)
	return nil
}

// DefaultCategories is the seed catalog, used by cmd/seed.
func DefaultCategories() []domain.CategoryRequest {
	return []domain.CategoryRequest{
		{Name: "Salary", Type: domain.CategoryIncome, Icon: "💰", Color: "#10b981"},
		{Name: "Freelance", Type: domain.CategoryIncome, Icon: "💼", Color: "#059669"},
		{Name: "Investment", Type: domain.CategoryIncome, Icon: "📈", Color: "#34d399"},
		{Name: "Business", Type: domain.CategoryIncome, Icon: "🏢", Color: "#6ee7b7"},
		{Name: "Gift", Type: domain.CategoryIncome, Icon: "🎁", Color: "#a7f3d0"},
		{Name: "Other Income", Type: domain.CategoryIncome, Icon: "💵", Color: "#d1fae5"},
		{Name: "Food & Dining", Type: domain.CategoryExpense, Icon: "🍔", Color: "#ef4444"},
		{Name: "Transportation", Type: domain.CategoryExpense, Icon: "🚗", Color: "#dc2626"},
		{Name: "Shopping", Type: domain.CategoryExpense, Icon: "🛍️", Color: "#f87171"},
		{Name: "Entertainment", Type: domain.CategoryExpense, Icon: "🎬", Color: "#fca5a5"},
		{Name: "Bills & Utilities", Type: domain.CategoryExpense, Icon: "📄", Color: "#f59e0b"},
		{Name: "Healthcare", Type: domain.CategoryExpense, Icon: "🏥", Color: "#ec4899"},
		{Name: "Education", Type: domain.CategoryExpense, Icon: "📚", Color: "#8b5cf6"},
		{Name: "Travel", Type: domain.CategoryExpense, Icon: "✈️", Color: "#3b82f6"},
		{Name: "Rent", Type: domain.CategoryExpense, Icon: "🏠", Color: "#6366f1"},
		{Name: "Insurance", Type: domain.CategoryExpense, Icon: "🛡️", Color: "#14b8a6"},
		{Name: "Groceries", Type: domain.CategoryExpense, Icon: "🛒", Color: "#22c55e"},
		{Name: "Fitness", Type: domain.CategoryExpense, Icon: "💪", Color: "#84cc16"},
		{Name: "Personal Care", Type: domain.CategoryExpense, Icon: "💇", Color: "#f43f5e"},
		{Name: "Subscriptions", Type: domain.CategoryExpense, Icon: "📱", Color: "#a855f7"},
		{Name: "Other Expense", Type: domain.CategoryExpense, Icon: "💸", Color: "#64748b"},
	}
}
