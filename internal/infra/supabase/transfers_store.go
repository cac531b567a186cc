package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transfers implements port.TransferStore
// ============================================================

// TransferStore is the transfers table behind the shared client.
type TransferStore struct {
	c *Client
}

// NewTransferStore creates the transfer store.
func NewTransferStore(c *Client) *TransferStore {
	return &TransferStore{c: c}
}

func (s *TransferStore) Get(ctx context.Context, transferID string) (*domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransfer")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", transferID))

	path := fmt.Sprintf("transfers?id=eq.%s&limit=1", transferID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transfers", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transfer", ID: transferID}
	}

	var rows []domain.Transfer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transfer: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transfer", ID: transferID}
	}
	return &rows[0], nil
}

// Create commits the transfer through rpc create_transfer: the function
// inserts the record, debits the source and credits the destination in one
// database transaction. A crash can never leave the record without both
// balance moves, or one move without the other.
func (s *TransferStore) Create(ctx context.Context, transfer *domain.Transfer) (*domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("transfer.from", transfer.FromAccountID),
		attribute.String("transfer.to", transfer.ToAccountID),
	)

	body, err := s.c.callRPC(ctx, "create_transfer", map[string]any{
		"p_id":           transfer.ID,
		"p_user_id":      transfer.UserID,
		"p_from_account": transfer.FromAccountID,
		"p_to_account":   transfer.ToAccountID,
		"p_amount":       transfer.Amount,
		"p_description":  transfer.Description,
		"p_date":         transfer.Date.Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transfers", Err: err}
	}

	s.c.logger.Info("supabase: transfer committed",
		zap.String("transfer_id", transfer.ID),
		zap.String("amount", transfer.Amount.String()),
	)

	var created domain.Transfer
	if err := json.Unmarshal(body, &created); err != nil {
		// Some PostgREST versions wrap the row in an array.
		var rows []domain.Transfer
		if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
			return transfer, nil
		}
		return &rows[0], nil
	}
	return &created, nil
}

func (s *TransferStore) ListByUser(ctx context.Context, userID string) ([]domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransfersByUser")
	defer span.End()

	path := fmt.Sprintf("transfers?user_id=eq.%s&order=date.desc", userID)
	body, err := s.c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transfers", Err: err}
	}
	if body == nil {
		return []domain.Transfer{}, nil
	}

	var rows []domain.Transfer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transfers: %w", err)
	}
	return rows, nil
}
