package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Accounts
// ============================================================

// AccountType enumerates the supported kinds of accounts.
type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountBank       AccountType = "bank"
	AccountCreditCard AccountType = "credit_card"
)

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountCash, AccountBank, AccountCreditCard:
		return true
	}
	return false
}

// Account holds a user's money pot. Balance is a cached aggregate: it must
// always equal the initial balance plus the sum of the signed contributions
// of every transaction and transfer currently linked to the account. Only
// the ledger service mutates it.
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateAccountRequest is the payload for opening a new account.
type CreateAccountRequest struct {
	Name    string          `json:"name"`
	Type    AccountType     `json:"type"`
	Balance decimal.Decimal `json:"balance"` // initial balance, defaults to zero
}

// UpdateAccountRequest carries the mutable account attributes. Balance is
// deliberately absent: it can only move through ledger operations.
type UpdateAccountRequest struct {
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}
