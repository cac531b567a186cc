package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Accounts implements port.AccountStore
// ============================================================

// AccountStore is the accounts table behind the shared PostgREST client.
type AccountStore struct {
	c *Client
}

// NewAccountStore creates the account store.
func NewAccountStore(c *Client) *AccountStore {
	return &AccountStore{c: c}
}

func (s *AccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	path := fmt.Sprintf("accounts?id=eq.%s&limit=1", accountID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return &rows[0], nil
}

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAccountsByUser")
	defer span.End()

	path := fmt.Sprintf("accounts?user_id=eq.%s&order=created_at.desc", userID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	if body == nil {
		return []domain.Account{}, nil
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return rows, nil
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAccount")
	defer span.End()

	body, err := s.c.doPost(ctx, "accounts", map[string]any{
		"id":         account.ID,
		"user_id":    account.UserID,
		"name":       account.Name,
		"type":       string(account.Type),
		"balance":    account.Balance,
		"created_at": account.CreatedAt.Format(time.RFC3339),
		"updated_at": account.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		// Representation missing; trust the write.
		return account, nil
	}
	return &rows[0], nil
}

func (s *AccountStore) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAccount")
	defer span.End()

	err := s.c.doPatch(ctx, fmt.Sprintf("accounts?id=eq.%s", account.ID), map[string]any{
		"name":       account.Name,
		"type":       string(account.Type),
		"updated_at": account.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	return account, nil
}

func (s *AccountStore) Delete(ctx context.Context, accountID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAccount")
	defer span.End()

	if err := s.c.doDelete(ctx, fmt.Sprintf("accounts?id=eq.%s", accountID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	return nil
}

// ApplyDelta adds delta to the account balance as one UPDATE inside the
// database (rpc apply_account_delta), returning the new balance. There is
// no load-modify-store cycle to race against.
func (s *AccountStore) ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ApplyAccountDelta")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	body, err := s.c.callRPC(ctx, "apply_account_delta", map[string]any{
		"p_account_id": accountID,
		"p_delta":      delta,
	})
	if err != nil {
		return decimal.Zero, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}

	var newBalance decimal.Decimal
	if err := json.Unmarshal(body, &newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("decode new balance: %w", err)
	}

	s.c.logger.Info("supabase: balance delta applied",
		zap.String("account_id", accountID),
		zap.String("delta", delta.String()),
		zap.String("new_balance", newBalance.String()),
	)
	return newBalance, nil
}
