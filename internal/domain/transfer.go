package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transfers (account-to-account movements)
// ============================================================

// Transfer moves money between two accounts of the same user. It is the only
// record that touches two balances, and it is immutable: a mistaken transfer
// is corrected with a new transfer in the opposite direction, never by
// editing or deleting this one.
type Transfer struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferRequest is the payload for moving funds between two accounts.
type TransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
}

// TransferResult returns the persisted transfer together with the two
// accounts as they stand after the balance moves.
type TransferResult struct {
	Transfer    *Transfer `json:"transfer"`
	Source      *Account  `json:"source_account"`
	Destination *Account  `json:"destination_account"`
}
