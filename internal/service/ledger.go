// Package service provides the business logic layer (use cases).
// LedgerService is the balance reconciliation core: it is the sole writer
// of Account.Balance and keeps it consistent with the transaction and
// transfer ledgers.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ledgerTracer = otel.Tracer("service/ledger")

// accountLocks serializes balance-affecting sequences per account ID.
// The storage layer already applies deltas atomically; the locks close the
// remaining check-then-act windows (transfer funds check, update
// reverse-and-reapply) against concurrent requests for the same account.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (a *accountLocks) lock(accountID string) func() {
	a.mu.Lock()
	m, ok := a.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		a.locks[accountID] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// lockPair acquires both account locks in ID order so two concurrent
// opposite transfers cannot deadlock.
func (a *accountLocks) lockPair(first, second string) func() {
	ids := []string{first, second}
	sort.Strings(ids)

	unlock0 := a.lock(ids[0])
	unlock1 := a.lock(ids[1])
	return func() {
		unlock1()
		unlock0()
	}
}

// LedgerService orchestrates transactions and transfers and reconciles
// account balances.
type LedgerService struct {
	accounts     port.AccountStore
	transactions port.TransactionStore
	transfers    port.TransferStore
	locks        *accountLocks
	metrics      *observability.Metrics
	logger       *zap.Logger

	// now is swappable in tests for edit-window checks.
	now func() time.Time
}

// NewLedgerService creates the ledger service.
func NewLedgerService(accounts port.AccountStore, transactions port.TransactionStore, transfers port.TransferStore, metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		accounts:     accounts,
		transactions: transactions,
		transfers:    transfers,
		locks:        newAccountLocks(),
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// ============================================================
// Transactions
// ============================================================

// CreateTransaction persists a new income/expense record and, when it is
// linked to an account the caller owns, applies its signed contribution to
// that account's balance. A missing or foreign account skips the balance
// step silently: the record is still kept for reporting.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("transaction.type", string(req.Type)))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("create_transaction", time.Since(start)) }()

	if err := validateTransactionRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	tx := &domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Division:    req.Division,
		Description: req.Description,
		Date:        date,
		AccountID:   req.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if tx.AccountID != "" {
		unlock := s.locks.lock(tx.AccountID)
		defer unlock()
	}

	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		s.logger.Error("failed to create transaction", zap.Error(err))
		return nil, err
	}

	if created.AccountID != "" {
		if err := s.applyContribution(ctx, userID, created.AccountID, created.SignedAmount()); err != nil {
			// Remove the record again; the create must commit fully or not
			// at all.
			if delErr := s.transactions.Delete(ctx, created.ID); delErr != nil {
				s.logger.Error("failed to roll back transaction after balance error",
					zap.String("transaction_id", created.ID),
					zap.Error(delErr),
				)
			}
			return nil, err
		}
	}

	s.metrics.IncrLedgerOp("create_transaction")
	s.logger.Info("transaction created",
		zap.String("transaction_id", created.ID),
		zap.String("user_id", userID),
		zap.String("type", string(created.Type)),
		zap.String("amount", created.Amount.String()),
	)
	return created, nil
}

// UpdateTransaction applies a partial update inside the 12-hour edit window.
// When amount or type changes on an account-linked transaction, the old
// contribution is reversed and the new one applied as one net delta, so the
// balance never sees an intermediate state.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, transactionID string, req *domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("update_transaction", time.Since(start)) }()

	tx, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, &domain.ErrForbidden{Resource: "transaction", ID: transactionID}
	}

	now := s.now()
	if !tx.Editable(now) {
		return nil, &domain.ErrEditWindowExpired{TransactionID: tx.ID, CreatedAt: tx.CreatedAt}
	}

	newType := tx.Type
	if req.Type != nil {
		if !domain.ValidTransactionType(*req.Type) {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
		}
		newType = *req.Type
	}
	newAmount := tx.Amount
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, &domain.ErrInvalidAmount{Amount: *req.Amount}
		}
		newAmount = *req.Amount
	}
	if req.Division != nil && !domain.ValidDivision(*req.Division) {
		return nil, &domain.ErrValidation{Field: "division", Message: "must be office or personal"}
	}
	if req.Category != nil && *req.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}

	var appliedDelta decimal.Decimal
	balanceChanged := tx.AccountID != "" && (req.Amount != nil || req.Type != nil)
	if balanceChanged {
		unlock := s.locks.lock(tx.AccountID)
		defer unlock()

		updated := *tx
		updated.Type = newType
		updated.Amount = newAmount

		// One net delta: reverse the old contribution, apply the new one.
		delta := updated.SignedAmount().Sub(tx.SignedAmount())
		if !delta.IsZero() {
			if err := s.applyContribution(ctx, userID, tx.AccountID, delta); err != nil {
				return nil, err
			}
			appliedDelta = delta
		}
	}

	tx.Type = newType
	tx.Amount = newAmount
	if req.Category != nil {
		tx.Category = *req.Category
	}
	if req.Division != nil {
		tx.Division = *req.Division
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	tx.UpdatedAt = now

	saved, err := s.transactions.Update(ctx, tx)
	if err != nil {
		if !appliedDelta.IsZero() {
			// Put the balance back; the record still carries its old values.
			if revErr := s.applyContribution(ctx, userID, tx.AccountID, appliedDelta.Neg()); revErr != nil {
				s.logger.Error("failed to reverse balance delta after update error",
					zap.String("transaction_id", tx.ID),
					zap.Error(revErr),
				)
			}
		}
		s.logger.Error("failed to update transaction", zap.String("transaction_id", tx.ID), zap.Error(err))
		return nil, err
	}

	s.metrics.IncrLedgerOp("update_transaction")
	return saved, nil
}

// DeleteTransaction removes a record and reverses its contribution if the
// linked account still exists. There is no edit-window restriction on
// deletes, deliberately asymmetric with updates.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("delete_transaction", time.Since(start)) }()

	tx, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx.UserID != userID {
		return &domain.ErrForbidden{Resource: "transaction", ID: transactionID}
	}

	reversed := false
	if tx.AccountID != "" {
		unlock := s.locks.lock(tx.AccountID)
		defer unlock()

		if err := s.applyContribution(ctx, userID, tx.AccountID, tx.SignedAmount().Neg()); err != nil {
			return err
		}
		reversed = true
	}

	if err := s.transactions.Delete(ctx, transactionID); err != nil {
		if reversed {
			// The record survives, so its contribution must too.
			if revErr := s.applyContribution(ctx, userID, tx.AccountID, tx.SignedAmount()); revErr != nil {
				s.logger.Error("failed to restore balance delta after delete error",
					zap.String("transaction_id", transactionID),
					zap.Error(revErr),
				)
			}
		}
		s.logger.Error("failed to delete transaction", zap.String("transaction_id", transactionID), zap.Error(err))
		return err
	}

	s.metrics.IncrLedgerOp("delete_transaction")
	s.logger.Info("transaction deleted",
		zap.String("transaction_id", transactionID),
		zap.String("user_id", userID),
	)
	return nil
}

// GetTransaction returns a single transaction after an ownership check.
func (s *LedgerService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	tx, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, &domain.ErrForbidden{Resource: "transaction", ID: transactionID}
	}
	return tx, nil
}

// ListTransactions returns the caller's transactions matching the filter.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()

	return s.transactions.Query(ctx, userID, filter)
}

// ============================================================
// Transfers
// ============================================================

// Transfer moves funds between two accounts the caller owns. The transfer
// record and both balance moves are persisted as one storage commit; the
// funds check and the commit run under both account locks so concurrent
// transfers cannot overdraw the source.
func (s *LedgerService) Transfer(ctx context.Context, userID string, req *domain.TransferRequest) (*domain.TransferResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("transfer.from", req.FromAccountID),
		attribute.String("transfer.to", req.ToAccountID),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("transfer", time.Since(start)) }()

	if req.FromAccountID == "" {
		return nil, &domain.ErrValidation{Field: "from_account_id", Message: "required"}
	}
	if req.ToAccountID == "" {
		return nil, &domain.ErrValidation{Field: "to_account_id", Message: "required"}
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, &domain.ErrSameAccount{AccountID: req.FromAccountID}
	}
	if !req.Amount.IsPositive() {
		return nil, &domain.ErrInvalidAmount{Amount: req.Amount}
	}

	unlock := s.locks.lockPair(req.FromAccountID, req.ToAccountID)
	defer unlock()

	var source, destination *domain.Account
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = s.accounts.Get(gctx, req.FromAccountID)
		return err
	})
	g.Go(func() error {
		var err error
		destination, err = s.accounts.Get(gctx, req.ToAccountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if source.UserID != userID {
		return nil, &domain.ErrForbidden{Resource: "account", ID: source.ID}
	}
	if destination.UserID != userID {
		return nil, &domain.ErrForbidden{Resource: "account", ID: destination.ID}
	}

	if source.Balance.LessThan(req.Amount) {
		return nil, &domain.ErrInsufficientFunds{Available: source.Balance, Required: req.Amount}
	}

	now := s.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	transfer := &domain.Transfer{
		ID:            uuid.New().String(),
		UserID:        userID,
		FromAccountID: source.ID,
		ToAccountID:   destination.ID,
		Amount:        req.Amount,
		Description:   req.Description,
		Date:          date,
		CreatedAt:     now,
	}

	created, err := s.transfers.Create(ctx, transfer)
	if err != nil {
		s.logger.Error("failed to create transfer",
			zap.String("from_account_id", source.ID),
			zap.String("to_account_id", destination.ID),
			zap.Error(err),
		)
		return nil, err
	}

	// Both locks are held, so the post-commit balances are just the loaded
	// snapshots shifted by the amount.
	source.Balance = source.Balance.Sub(req.Amount)
	destination.Balance = destination.Balance.Add(req.Amount)

	s.metrics.IncrLedgerOp("transfer")
	s.logger.Info("transfer completed",
		zap.String("transfer_id", created.ID),
		zap.String("from_account_id", source.ID),
		zap.String("to_account_id", destination.ID),
		zap.String("amount", created.Amount.String()),
	)

	return &domain.TransferResult{Transfer: created, Source: source, Destination: destination}, nil
}

// ListTransfers returns the caller's transfer history, newest first.
func (s *LedgerService) ListTransfers(ctx context.Context, userID string) ([]domain.Transfer, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransfers")
	defer span.End()

	return s.transfers.ListByUser(ctx, userID)
}

// ============================================================
// Internals
// ============================================================

// applyContribution adds delta to the account's balance via the store's
// atomic increment. A missing or foreign account is tolerated: the balance
// step is skipped and the ledger record stands on its own. Any other storage
// failure is returned so callers never report success for a half-applied
// operation.
func (s *LedgerService) applyContribution(ctx context.Context, userID, accountID string, delta decimal.Decimal) error {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			s.logger.Debug("balance step skipped: account not found",
				zap.String("account_id", accountID),
			)
			return nil
		}
		return err
	}
	if account.UserID != userID {
		s.logger.Debug("balance step skipped: account not owned by caller",
			zap.String("account_id", accountID),
			zap.String("user_id", userID),
		)
		return nil
	}

	newBalance, err := s.accounts.ApplyDelta(ctx, accountID, delta)
	if err != nil {
		s.logger.Error("failed to apply balance delta",
			zap.String("account_id", accountID),
			zap.String("delta", delta.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("balance delta applied",
		zap.String("account_id", accountID),
		zap.String("delta", delta.String()),
		zap.String("new_balance", newBalance.String()),
	)
	return nil
}

func validateTransactionRequest(req *domain.CreateTransactionRequest) error {
	if !domain.ValidTransactionType(req.Type) {
		return &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if !req.Amount.IsPositive() {
		return &domain.ErrInvalidAmount{Amount: req.Amount}
	}
	if req.Category == "" {
		return &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if !domain.ValidDivision(req.Division) {
		return &domain.ErrValidation{Field: "division", Message: "must be office or personal"}
	}
	return nil
}
