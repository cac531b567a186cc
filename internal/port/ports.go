// Package port defines the interfaces between services and their
// collaborators (stores, caches). Services accept these interfaces;
// infra packages return concrete implementations.
package port

import (
	"context"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"

	"github.com/shopspring/decimal"
)

// AccountStore persists accounts. Get is deliberately unscoped so callers
// can distinguish "absent" from "owned by someone else"; listing is always
// per user.
type AccountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, accountID string) error

	// ApplyDelta atomically adds delta to the account's balance at the
	// storage layer and returns the new balance. This is the only balance
	// write path besides CreateTransfer.
	ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error)
}

// TransactionStore persists income/expense records.
type TransactionStore interface {
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Delete(ctx context.Context, transactionID string) error
	Query(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// TransferStore persists account-to-account movements. Create commits the
// transfer record and both balance moves as a single storage transaction:
// either all three happen or none do.
type TransferStore interface {
	Get(ctx context.Context, transferID string) (*domain.Transfer, error)
	Create(ctx context.Context, transfer *domain.Transfer) (*domain.Transfer, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Transfer, error)
}

// CategoryStore persists the shared category catalog.
type CategoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	List(ctx context.Context, typ domain.CategoryType) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

// UserStore persists account holders.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// Cache abstracts a read-through cache (in-memory TTL today).
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
