package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the backend.

// ErrNotFound indicates a referenced entity is absent.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the entity exists but is not owned by the caller.
type ErrForbidden struct {
	Resource string
	ID       string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("not authorized for %s: %s", e.Resource, e.ID)
}

// ErrInvalidAmount indicates a non-positive or missing amount.
type ErrInvalidAmount struct {
	Amount decimal.Decimal
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("amount must be positive, got %s", e.Amount)
}

// ErrSameAccount indicates a transfer where source equals destination.
type ErrSameAccount struct {
	AccountID string
}

func (e *ErrSameAccount) Error() string {
	return fmt.Sprintf("cannot transfer to the same account: %s", e.AccountID)
}

// ErrInsufficientFunds indicates the source account cannot cover a transfer.
type ErrInsufficientFunds struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s required=%s", e.Available, e.Required)
}

// ErrEditWindowExpired indicates an update attempted after the 12-hour
// mutation window closed.
type ErrEditWindowExpired struct {
	TransactionID string
	CreatedAt     time.Time
}

func (e *ErrEditWindowExpired) Error() string {
	return fmt.Sprintf("transaction %s can only be edited within %s of creation", e.TransactionID, EditWindow)
}

// ErrValidation indicates a malformed field in a request payload.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a resource already exists (e.g. duplicate email).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrExternalService indicates a failure in the storage backend or another
// external dependency.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the storage circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
