package service

import (
	"context"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var accountTracer = otel.Tracer("service/accounts")

// AccountService handles account CRUD. Balance mutation is out of its
// hands: the ledger service owns that, and account updates only touch name
// and type.
type AccountService struct {
	store  port.AccountStore
	logger *zap.Logger
}

// NewAccountService creates the account service.
func NewAccountService(store port.AccountStore, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

// ListAccounts returns all of the caller's accounts.
func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.ListAccounts")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.store.ListByUser(ctx, userID)
}

// GetAccount returns a single account after an ownership check.
func (s *AccountService) GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.GetAccount")
	defer span.End()

	account, err := s.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, &domain.ErrForbidden{Resource: "account", ID: accountID}
	}
	return account, nil
}

// CreateAccount opens a new account with an optional initial balance.
func (s *AccountService) CreateAccount(ctx context.Context, userID string, req *domain.CreateAccountRequest) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if !domain.ValidAccountType(req.Type) {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be cash, bank or credit_card"}
	}

	now := time.Now()
	account := &domain.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.store.Create(ctx, account)
	if err != nil {
		s.logger.Error("failed to create account", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_id", created.ID),
		zap.String("user_id", userID),
		zap.String("type", string(created.Type)),
	)
	return created, nil
}

// UpdateAccount renames or retypes an account. Balance is not updatable.
func (s *AccountService) UpdateAccount(ctx context.Context, userID, accountID string, req *domain.UpdateAccountRequest) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.UpdateAccount")
	defer span.End()

	account, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Type != "" {
		if !domain.ValidAccountType(req.Type) {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be cash, bank or credit_card"}
		}
		account.Type = req.Type
	}
	account.UpdatedAt = time.Now()

	return s.store.Update(ctx, account)
}

// DeleteAccount removes an account. Transactions that referenced it are
// kept: their account link dangles and no longer contributes to any balance.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.DeleteAccount")
	defer span.End()

	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, accountID); err != nil {
		s.logger.Error("failed to delete account", zap.String("account_id", accountID), zap.Error(err))
		return err
	}

	s.logger.Info("account deleted",
		zap.String("account_id", accountID),
		zap.String("user_id", userID),
	)
	return nil
}
