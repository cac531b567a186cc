package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions (income / expense ledger)
// ============================================================

// EditWindow is how long after creation a transaction may still be updated.
// Deletes are deliberately exempt.
const EditWindow = 12 * time.Hour

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// ValidTransactionType reports whether t is income or expense.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Division tags a transaction as office or personal spending, orthogonal to
// the category taxonomy.
type Division string

const (
	DivisionOffice   Division = "office"
	DivisionPersonal Division = "personal"
)

// ValidDivision reports whether d is office or personal.
func ValidDivision(d Division) bool {
	return d == DivisionOffice || d == DivisionPersonal
}

// Transaction is a single income or expense record. AccountID is a weak
// reference: the transaction survives deletion of its account, it just stops
// contributing to any balance. CreatedAt anchors the edit window; Date is the
// user-supplied reporting date.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Division    Division        `json:"division"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	AccountID   string          `json:"account_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Editable reports whether the transaction is still inside its edit window.
func (t *Transaction) Editable(now time.Time) bool {
	return now.Sub(t.CreatedAt) <= EditWindow
}

// SignedAmount is the transaction's contribution to its linked account:
// +amount for income, -amount for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// CreateTransactionRequest is the payload for logging a transaction.
type CreateTransactionRequest struct {
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Division    Division        `json:"division"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	AccountID   string          `json:"account_id,omitempty"`
}

// UpdateTransactionRequest carries a partial update. Nil pointers mean
// "keep the stored value"; a type-only change therefore reuses the old
// amount when the contribution is recomputed.
type UpdateTransactionRequest struct {
	Type        *TransactionType `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Division    *Division        `json:"division,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
}

// TransactionFilter narrows a transaction query. Zero values mean
// "no constraint". Results are always scoped to the requesting user.
type TransactionFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	Categories []string
	Divisions  []Division
	Type       TransactionType
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}
