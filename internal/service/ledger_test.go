package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account

	// applyDeltaErr makes every ApplyDelta call fail when set.
	applyDeltaErr error
}

func newMockAccountStore(accounts ...*domain.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		cp := *a
		m.accounts[a.ID] = &cp
	}
	return m
}

func (m *mockAccountStore) Get(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountStore) ListByUser(_ context.Context, userID string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountStore) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	return account, nil
}

func (m *mockAccountStore) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	return account, nil
}

func (m *mockAccountStore) Delete(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, accountID)
	return nil
}

func (m *mockAccountStore) ApplyDelta(_ context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyDeltaErr != nil {
		return decimal.Zero, m.applyDeltaErr
	}
	a, ok := m.accounts[accountID]
	if !ok {
		return decimal.Zero, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	a.Balance = a.Balance.Add(delta)
	return a.Balance, nil
}

func (m *mockAccountStore) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		t.Fatalf("account %s not in store", accountID)
	}
	return a.Balance
}

type mockTransactionStore struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction
}

func newMockTransactionStore(txs ...*domain.Transaction) *mockTransactionStore {
	m := &mockTransactionStore{transactions: make(map[string]*domain.Transaction)}
	for _, tx := range txs {
		cp := *tx
		m.transactions[tx.ID] = &cp
	}
	return m
}

func (m *mockTransactionStore) Get(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[transactionID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	cp := *tx
	return &cp, nil
}

func (m *mockTransactionStore) Create(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.transactions[tx.ID] = &cp
	return tx, nil
}

func (m *mockTransactionStore) Update(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[tx.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}
	cp := *tx
	m.transactions[tx.ID] = &cp
	return tx, nil
}

func (m *mockTransactionStore) Delete(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[transactionID]; !ok {
		return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	delete(m.transactions, transactionID)
	return nil
}

func (m *mockTransactionStore) Query(_ context.Context, userID string, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *mockTransactionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// mockTransferStore mimics the storage-side atomic commit: the transfer
// record and both balance moves happen under one lock.
type mockTransferStore struct {
	mu        sync.Mutex
	transfers map[string]*domain.Transfer
	accounts  *mockAccountStore
	createErr error
}

func newMockTransferStore(accounts *mockAccountStore) *mockTransferStore {
	return &mockTransferStore{
		transfers: make(map[string]*domain.Transfer),
		accounts:  accounts,
	}
}

func (m *mockTransferStore) Get(_ context.Context, transferID string) (*domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transfers[transferID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transfer", ID: transferID}
	}
	cp := *tr
	return &cp, nil
}

func (m *mockTransferStore) Create(ctx context.Context, transfer *domain.Transfer) (*domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, err := m.accounts.ApplyDelta(ctx, transfer.FromAccountID, transfer.Amount.Neg()); err != nil {
		return nil, err
	}
	if _, err := m.accounts.ApplyDelta(ctx, transfer.ToAccountID, transfer.Amount); err != nil {
		return nil, err
	}
	cp := *transfer
	m.transfers[transfer.ID] = &cp
	return transfer, nil
}

func (m *mockTransferStore) ListByUser(_ context.Context, userID string) ([]domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transfer
	for _, tr := range m.transfers {
		if tr.UserID == userID {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (m *mockTransferStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

// --- Helpers ---

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newLedger(accounts *mockAccountStore, txs *mockTransactionStore, transfers *mockTransferStore) *service.LedgerService {
	return service.NewLedgerService(accounts, txs, transfers, observability.NewMetrics(), zap.NewNop())
}

func assertBalance(t *testing.T, accounts *mockAccountStore, accountID, want string) {
	t.Helper()
	got := accounts.balance(t, accountID)
	if !got.Equal(dec(want)) {
		t.Errorf("account %s balance = %s, want %s", accountID, got, want)
	}
}

// --- Transaction tests ---

func TestCreateTransaction_IncomeAddsToBalance(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	created, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionIncome,
		Amount:    dec("500"),
		Category:  "Salary",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated transaction ID")
	}
	assertBalance(t, accounts, "acc-1", "1500")
}

func TestCreateTransaction_ExpenseSubtractsFromBalance(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	_, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionExpense,
		Amount:    dec("200"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assertBalance(t, accounts, "acc-1", "800")
}

func TestCreateTransaction_RejectsNonPositiveAmount(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	for _, amount := range []string{"0", "-50"} {
		_, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
			Type:      domain.TransactionExpense,
			Amount:    dec(amount),
			Category:  "Food & Dining",
			Division:  domain.DivisionPersonal,
			AccountID: "acc-1",
		})
		var invalidErr *domain.ErrInvalidAmount
		if !errors.As(err, &invalidErr) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if txs.count() != 0 {
		t.Error("expected no transaction persisted")
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

func TestCreateTransaction_UnlinkedKeepsRecordWithoutBalanceStep(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	// No account linked at all.
	created, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:     domain.TransactionExpense,
		Amount:   dec("75"),
		Category: "Shopping",
		Division: domain.DivisionPersonal,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.AccountID != "" {
		t.Errorf("expected empty account ID, got %s", created.AccountID)
	}

	// Linked to an account that no longer exists.
	_, err = svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionExpense,
		Amount:    dec("75"),
		Category:  "Shopping",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-gone",
	})
	if err != nil {
		t.Fatalf("expected record kept despite missing account, got %v", err)
	}

	if txs.count() != 2 {
		t.Errorf("expected 2 persisted transactions, got %d", txs.count())
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

func TestCreateTransaction_ForeignAccountSkipsBalanceStep(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-other", UserID: "user-2", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	_, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionIncome,
		Amount:    dec("500"),
		Category:  "Salary",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-other",
	})
	if err != nil {
		t.Fatalf("expected record kept, got %v", err)
	}
	if txs.count() != 1 {
		t.Errorf("expected 1 persisted transaction, got %d", txs.count())
	}
	assertBalance(t, accounts, "acc-other", "1000")
}

func TestUpdateTransaction_AppliesNetDelta(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("800")})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("200"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	newAmount := dec("300")
	updated, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Amount: &newAmount,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Amount.Equal(dec("300")) {
		t.Errorf("expected amount 300, got %s", updated.Amount)
	}
	// Old -200 reversed, new -300 applied: 800 + 200 - 300 = 700.
	assertBalance(t, accounts, "acc-1", "700")
}

func TestUpdateTransaction_TypeFlipReversesContribution(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1200")})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionIncome,
		Amount:    dec("200"),
		Category:  "Salary",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	expense := domain.TransactionExpense
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Type: &expense,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// +200 becomes -200: net delta of -400.
	assertBalance(t, accounts, "acc-1", "800")
}

func TestUpdateTransaction_InsideEditWindow(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("100"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-domain.EditWindow + time.Minute),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	desc := "late lunch"
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("expected update just inside the window to succeed, got %v", err)
	}
}

func TestUpdateTransaction_EditWindowExpired(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("100"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-domain.EditWindow - time.Minute),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	newAmount := dec("500")
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Amount: &newAmount,
	})
	var windowErr *domain.ErrEditWindowExpired
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected ErrEditWindowExpired, got %v", err)
	}
	if windowErr.TransactionID != "tx-1" {
		t.Errorf("expected transaction ID tx-1 in error, got %s", windowErr.TransactionID)
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

func TestUpdateTransaction_Forbidden(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-2",
		Type:      domain.TransactionExpense,
		Amount:    dec("100"),
		CreatedAt: time.Now(),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	desc := "mine now"
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Description: &desc,
	})
	var forbiddenErr *domain.ErrForbidden
	if !errors.As(err, &forbiddenErr) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	accounts := newMockAccountStore()
	svc := newLedger(accounts, newMockTransactionStore(), newMockTransferStore(accounts))

	desc := "ghost"
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-missing", &domain.UpdateTransactionRequest{
		Description: &desc,
	})
	var notFoundErr *domain.ErrNotFound
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTransaction_ReversesContribution(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("700")})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("300"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		// Outside the edit window: deletes are not window-restricted.
		CreatedAt: time.Now().Add(-48 * time.Hour),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	if err := svc.DeleteTransaction(context.Background(), "user-1", "tx-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if txs.count() != 0 {
		t.Error("expected transaction removed")
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

func TestDeleteTransaction_Forbidden(t *testing.T) {
	accounts := newMockAccountStore()
	txs := newMockTransactionStore(&domain.Transaction{
		ID:     "tx-1",
		UserID: "user-2",
		Type:   domain.TransactionExpense,
		Amount: dec("100"),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	err := svc.DeleteTransaction(context.Background(), "user-1", "tx-1")
	var forbiddenErr *domain.ErrForbidden
	if !errors.As(err, &forbiddenErr) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if txs.count() != 1 {
		t.Error("expected transaction kept")
	}
}

func TestCreateTransaction_DeltaFailureRollsBackRecord(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	accounts.applyDeltaErr = errors.New("storage unavailable")
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	_, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionExpense,
		Amount:    dec("200"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
	})
	if err == nil {
		t.Fatal("expected error when the balance delta fails")
	}
	if txs.count() != 0 {
		t.Error("expected record rolled back after balance failure")
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

func TestUpdateTransaction_DeltaFailureLeavesRecordUnchanged(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("800")})
	accounts.applyDeltaErr = errors.New("storage unavailable")
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("200"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	newAmount := dec("300")
	_, err := svc.UpdateTransaction(context.Background(), "user-1", "tx-1", &domain.UpdateTransactionRequest{
		Amount: &newAmount,
	})
	if err == nil {
		t.Fatal("expected error when the balance delta fails")
	}
	kept, getErr := txs.Get(context.Background(), "tx-1")
	if getErr != nil {
		t.Fatalf("expected record kept, got %v", getErr)
	}
	if !kept.Amount.Equal(dec("200")) {
		t.Errorf("expected amount unchanged at 200, got %s", kept.Amount)
	}
	assertBalance(t, accounts, "acc-1", "800")
}

func TestDeleteTransaction_DeltaFailureKeepsRecord(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("700")})
	accounts.applyDeltaErr = errors.New("storage unavailable")
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("300"),
		Category:  "Food & Dining",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	})
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	err := svc.DeleteTransaction(context.Background(), "user-1", "tx-1")
	if err == nil {
		t.Fatal("expected error when the balance reversal fails")
	}
	if txs.count() != 1 {
		t.Error("expected record kept when its reversal could not be applied")
	}
	assertBalance(t, accounts, "acc-1", "700")
}

// Create, update, delete in sequence must return the balance to its
// starting point plus the final contribution at each step.
func TestTransactionLifecycle_BalanceReconciliation(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, "user-1", &domain.CreateTransactionRequest{
		Type:      domain.TransactionExpense,
		Amount:    dec("200"),
		Category:  "Groceries",
		Division:  domain.DivisionPersonal,
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertBalance(t, accounts, "acc-1", "800")

	newAmount := dec("300")
	if _, err := svc.UpdateTransaction(ctx, "user-1", created.ID, &domain.UpdateTransactionRequest{
		Amount: &newAmount,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertBalance(t, accounts, "acc-1", "700")

	if err := svc.DeleteTransaction(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBalance(t, accounts, "acc-1", "1000")
}

// --- Transfer tests ---

func TestTransfer_MovesFundsBetweenAccounts(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("50")},
	)
	transfers := newMockTransferStore(accounts)
	svc := newLedger(accounts, newMockTransactionStore(), transfers)

	result, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        dec("400"),
		Description:   "rent share",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	assertBalance(t, accounts, "acc-a", "600")
	assertBalance(t, accounts, "acc-b", "450")

	if !result.Source.Balance.Equal(dec("600")) {
		t.Errorf("result source balance = %s, want 600", result.Source.Balance)
	}
	if !result.Destination.Balance.Equal(dec("450")) {
		t.Errorf("result destination balance = %s, want 450", result.Destination.Balance)
	}
	if transfers.count() != 1 {
		t.Errorf("expected 1 transfer record, got %d", transfers.count())
	}
}

func TestTransfer_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("600")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("450")},
	)
	transfers := newMockTransferStore(accounts)
	svc := newLedger(accounts, newMockTransactionStore(), transfers)

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        dec("1000"),
	})
	var fundsErr *domain.ErrInsufficientFunds
	if !errors.As(err, &fundsErr) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !fundsErr.Available.Equal(dec("600")) || !fundsErr.Required.Equal(dec("1000")) {
		t.Errorf("unexpected amounts in error: available=%s required=%s", fundsErr.Available, fundsErr.Required)
	}

	assertBalance(t, accounts, "acc-a", "600")
	assertBalance(t, accounts, "acc-b", "450")
	if transfers.count() != 0 {
		t.Error("expected no transfer record")
	}
}

func TestTransfer_ExactBalanceSucceeds(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("600")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("0")},
	)
	transfers := newMockTransferStore(accounts)
	svc := newLedger(accounts, newMockTransactionStore(), transfers)

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        dec("600"),
	})
	if err != nil {
		t.Fatalf("expected transfer of the full balance to succeed, got %v", err)
	}
	assertBalance(t, accounts, "acc-a", "0")
	assertBalance(t, accounts, "acc-b", "600")
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")})
	svc := newLedger(accounts, newMockTransactionStore(), newMockTransferStore(accounts))

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-a",
		Amount:        dec("100"),
	})
	var sameErr *domain.ErrSameAccount
	if !errors.As(err, &sameErr) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
	assertBalance(t, accounts, "acc-a", "1000")
}

func TestTransfer_RejectsNonPositiveAmount(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("0")},
	)
	svc := newLedger(accounts, newMockTransactionStore(), newMockTransferStore(accounts))

	for _, amount := range []string{"0", "-10"} {
		_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
			FromAccountID: "acc-a",
			ToAccountID:   "acc-b",
			Amount:        dec(amount),
		})
		var invalidErr *domain.ErrInvalidAmount
		if !errors.As(err, &invalidErr) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestTransfer_ForeignAccountForbidden(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")},
		&domain.Account{ID: "acc-theirs", UserID: "user-2", Balance: dec("0")},
	)
	svc := newLedger(accounts, newMockTransactionStore(), newMockTransferStore(accounts))

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-theirs",
		Amount:        dec("100"),
	})
	var forbiddenErr *domain.ErrForbidden
	if !errors.As(err, &forbiddenErr) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	assertBalance(t, accounts, "acc-a", "1000")
	assertBalance(t, accounts, "acc-theirs", "0")
}

func TestTransfer_MissingAccountNotFound(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")})
	svc := newLedger(accounts, newMockTransactionStore(), newMockTransferStore(accounts))

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-missing",
		Amount:        dec("100"),
	})
	var notFoundErr *domain.ErrNotFound
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransfer_StorageFailureLeavesBalancesUntouched(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("1000")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("50")},
	)
	transfers := newMockTransferStore(accounts)
	transfers.createErr = errors.New("storage unavailable")
	svc := newLedger(accounts, newMockTransactionStore(), transfers)

	_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        dec("400"),
	})
	if err == nil {
		t.Fatal("expected error from storage")
	}
	assertBalance(t, accounts, "acc-a", "1000")
	assertBalance(t, accounts, "acc-b", "50")
	if transfers.count() != 0 {
		t.Error("expected no transfer record")
	}
}

// --- Concurrency ---

func TestTransfer_ConcurrentCannotOverdraw(t *testing.T) {
	accounts := newMockAccountStore(
		&domain.Account{ID: "acc-a", UserID: "user-1", Balance: dec("100")},
		&domain.Account{ID: "acc-b", UserID: "user-1", Balance: dec("0")},
	)
	transfers := newMockTransferStore(accounts)
	svc := newLedger(accounts, newMockTransactionStore(), transfers)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), "user-1", &domain.TransferRequest{
				FromAccountID: "acc-a",
				ToAccountID:   "acc-b",
				Amount:        dec("100"),
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly 1 successful transfer, got %d", successes)
	}
	assertBalance(t, accounts, "acc-a", "0")
	assertBalance(t, accounts, "acc-b", "100")
}

func TestCreateTransaction_ConcurrentDeltasAllLand(t *testing.T) {
	accounts := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Balance: dec("1000")})
	txs := newMockTransactionStore()
	svc := newLedger(accounts, txs, newMockTransferStore(accounts))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(context.Background(), "user-1", &domain.CreateTransactionRequest{
				Type:      domain.TransactionExpense,
				Amount:    dec("10"),
				Category:  "Shopping",
				Division:  domain.DivisionPersonal,
				AccountID: "acc-1",
			})
			if err != nil {
				t.Errorf("create failed: %v", err)
			}
		}()
	}
	wg.Wait()

	assertBalance(t, accounts, "acc-1", "800")
	if txs.count() != workers {
		t.Errorf("expected %d transactions, got %d", workers, txs.count())
	}
}
