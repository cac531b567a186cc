package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
)

// ============================================================
// Users implements port.UserStore
// ============================================================

// userRow carries password_hash, which domain.User never serializes.
type userRow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// UserStore is the users table behind the shared client.
type UserStore struct {
	c *Client
}

// NewUserStore creates the user store.
func NewUserStore(c *Client) *UserStore {
	return &UserStore{c: c}
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()

	path := fmt.Sprintf("users?id=eq.%s&limit=1", userID)
	return s.getOne(ctx, path, userID)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	path := fmt.Sprintf("users?email=eq.%s&limit=1", url.QueryEscape(email))
	return s.getOne(ctx, path, email)
}

func (s *UserStore) getOne(ctx context.Context, path, id string) (*domain.User, error) {
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return rows[0].toDomain(), nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	body, err := s.c.doPost(ctx, "users", map[string]any{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return user, nil
	}
	return rows[0].toDomain(), nil
}
