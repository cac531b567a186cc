package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Transactions implements port.TransactionStore
// ============================================================

// TransactionStore is the transactions table behind the shared client.
type TransactionStore struct {
	c *Client
}

// NewTransactionStore creates the transaction store.
func NewTransactionStore(c *Client) *TransactionStore {
	return &TransactionStore{c: c}
}

func (s *TransactionStore) Get(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	path := fmt.Sprintf("transactions?id=eq.%s&limit=1", transactionID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	var rows []domain.Transaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return &rows[0], nil
}

func (s *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	payload := map[string]any{
		"id":          tx.ID,
		"user_id":     tx.UserID,
		"type":        string(tx.Type),
		"amount":      tx.Amount,
		"category":    tx.Category,
		"division":    string(tx.Division),
		"description": tx.Description,
		"date":        tx.Date.Format(time.RFC3339),
		"created_at":  tx.CreatedAt.Format(time.RFC3339),
		"updated_at":  tx.UpdatedAt.Format(time.RFC3339),
	}
	if tx.AccountID != "" {
		payload["account_id"] = tx.AccountID
	}

	body, err := s.c.doPost(ctx, "transactions", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	var rows []domain.Transaction
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return tx, nil
	}
	return &rows[0], nil
}

func (s *TransactionStore) Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	err := s.c.doPatch(ctx, fmt.Sprintf("transactions?id=eq.%s", tx.ID), map[string]any{
		"type":        string(tx.Type),
		"amount":      tx.Amount,
		"category":    tx.Category,
		"division":    string(tx.Division),
		"description": tx.Description,
		"date":        tx.Date.Format(time.RFC3339),
		"updated_at":  tx.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return tx, nil
}

func (s *TransactionStore) Delete(ctx context.Context, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	if err := s.c.doDelete(ctx, fmt.Sprintf("transactions?id=eq.%s", transactionID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return nil
}

// Query lists a user's transactions newest first, narrowed by the filter.
// Filters translate directly to PostgREST query operators.
func (s *TransactionStore) Query(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.QueryTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	params := []string{fmt.Sprintf("user_id=eq.%s", userID)}

	if !filter.StartDate.IsZero() {
		params = append(params, fmt.Sprintf("date=gte.%s", filter.StartDate.Format(time.RFC3339)))
	}
	if !filter.EndDate.IsZero() {
		params = append(params, fmt.Sprintf("date=lte.%s", filter.EndDate.Format(time.RFC3339)))
	}
	if len(filter.Categories) > 0 {
		params = append(params, fmt.Sprintf("category=in.(%s)", strings.Join(filter.Categories, ",")))
	}
	if len(filter.Divisions) > 0 {
		divs := make([]string, len(filter.Divisions))
		for i, d := range filter.Divisions {
			divs[i] = string(d)
		}
		params = append(params, fmt.Sprintf("division=in.(%s)", strings.Join(divs, ",")))
	}
	if filter.Type != "" {
		params = append(params, fmt.Sprintf("type=eq.%s", filter.Type))
	}
	if filter.MinAmount != nil {
		params = append(params, fmt.Sprintf("amount=gte.%s", filter.MinAmount.String()))
	}
	if filter.MaxAmount != nil {
		params = append(params, fmt.Sprintf("amount=lte.%s", filter.MaxAmount.String()))
	}
	params = append(params, "order=date.desc")

	body, err := s.c.doGet(ctx, "transactions?"+strings.Join(params, "&"))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var rows []domain.Transaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return rows, nil
}
