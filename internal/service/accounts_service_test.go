package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"go.uber.org/zap"
)

func TestCreateAccount_Success(t *testing.T) {
	store := newMockAccountStore()
	svc := service.NewAccountService(store, zap.NewNop())

	created, err := svc.CreateAccount(context.Background(), "user-1", &domain.CreateAccountRequest{
		Name:    "Main Checking",
		Type:    domain.AccountBank,
		Balance: dec("2500"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated account ID")
	}
	if created.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %s", created.UserID)
	}
	if !created.Balance.Equal(dec("2500")) {
		t.Errorf("expected initial balance 2500, got %s", created.Balance)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	store := newMockAccountStore()
	svc := service.NewAccountService(store, zap.NewNop())

	cases := []struct {
		name string
		req  *domain.CreateAccountRequest
	}{
		{"missing name", &domain.CreateAccountRequest{Type: domain.AccountCash}},
		{"bad type", &domain.CreateAccountRequest{Name: "Wallet", Type: "crypto"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), "user-1", tc.req)
			var validationErr *domain.ErrValidation
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestGetAccount_OwnershipEnforced(t *testing.T) {
	store := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-2", Name: "Theirs"})
	svc := service.NewAccountService(store, zap.NewNop())

	_, err := svc.GetAccount(context.Background(), "user-1", "acc-1")
	var forbiddenErr *domain.ErrForbidden
	if !errors.As(err, &forbiddenErr) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.GetAccount(context.Background(), "user-1", "acc-missing")
	var notFoundErr *domain.ErrNotFound
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAccount_DoesNotTouchBalance(t *testing.T) {
	store := newMockAccountStore(&domain.Account{
		ID:      "acc-1",
		UserID:  "user-1",
		Name:    "Wallet",
		Type:    domain.AccountCash,
		Balance: dec("320"),
	})
	svc := service.NewAccountService(store, zap.NewNop())

	updated, err := svc.UpdateAccount(context.Background(), "user-1", "acc-1", &domain.UpdateAccountRequest{
		Name: "Everyday Cash",
		Type: domain.AccountBank,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Everyday Cash" {
		t.Errorf("expected renamed account, got %s", updated.Name)
	}
	if updated.Type != domain.AccountBank {
		t.Errorf("expected type bank, got %s", updated.Type)
	}
	assertBalance(t, store, "acc-1", "320")
}

func TestDeleteAccount_KeepsTransactions(t *testing.T) {
	store := newMockAccountStore(&domain.Account{ID: "acc-1", UserID: "user-1", Name: "Wallet"})
	txs := newMockTransactionStore(&domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      domain.TransactionExpense,
		Amount:    dec("40"),
		AccountID: "acc-1",
	})
	svc := service.NewAccountService(store, zap.NewNop())

	if err := svc.DeleteAccount(context.Background(), "user-1", "acc-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := store.Get(context.Background(), "acc-1"); err == nil {
		t.Error("expected account removed")
	}
	// The transaction survives with a dangling account link.
	if txs.count() != 1 {
		t.Error("expected transaction kept after account deletion")
	}
}
