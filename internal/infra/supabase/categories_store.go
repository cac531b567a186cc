package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
)

// ============================================================
// Categories implements port.CategoryStore
// ============================================================

// CategoryStore is the categories table behind the shared client.
type CategoryStore struct {
	c *Client
}

// NewCategoryStore creates the category store.
func NewCategoryStore(c *Client) *CategoryStore {
	return &CategoryStore{c: c}
}

func (s *CategoryStore) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&limit=1", categoryID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &rows[0], nil
}

// List returns catalog entries sorted by name. An empty type means all;
// otherwise entries of that type plus "both" are returned.
func (s *CategoryStore) List(ctx context.Context, typ domain.CategoryType) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	path := "categories?order=name.asc"
	if typ != "" {
		path = fmt.Sprintf("categories?or=(type.eq.%s,type.eq.both)&order=name.asc", typ)
	}

	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	if body == nil {
		return []domain.Category{}, nil
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return rows, nil
}

func (s *CategoryStore) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	body, err := s.c.doPost(ctx, "categories", map[string]any{
		"id":         category.ID,
		"name":       category.Name,
		"type":       string(category.Type),
		"icon":       category.Icon,
		"color":      category.Color,
		"created_at": category.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return category, nil
	}
	return &rows[0], nil
}

func (s *CategoryStore) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	err := s.c.doPatch(ctx, fmt.Sprintf("categories?id=eq.%s", category.ID), map[string]any{
		"name":  category.Name,
		"type":  string(category.Type),
		"icon":  category.Icon,
		"color": category.Color,
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return category, nil
}

func (s *CategoryStore) Delete(ctx context.Context, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCategory")
	defer span.End()

	if err := s.c.doDelete(ctx, fmt.Sprintf("categories?id=eq.%s", categoryID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return nil
}
