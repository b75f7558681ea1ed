package services

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/SscSPs/blood_bank_app/internal/dto"
)

// AccountReaderSvc defines read operations of the account directory
type AccountReaderSvc interface {
	// GetAccountByID resolves an account; apperrors.ErrNotFound when absent.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByEmail resolves an account by case-insensitive email.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountWriterSvc defines account creation
type AccountWriterSvc interface {
	// RegisterAccount self-registers an organisation, hospital or donor.
	RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error)

	// RegisterWalkInDonor creates a donor account during an in transaction.
	// Returns apperrors.ErrDuplicateEmail when the email is already registered.
	RegisterWalkInDonor(ctx context.Context, actor *domain.Account, req dto.NewDonorRequest) (*domain.Account, error)

	// RegisterAnonymousDonor synthesises a placeholder donor for an unattributed contribution.
	RegisterAnonymousDonor(ctx context.Context, actor *domain.Account, bloodType domain.BloodType) (*domain.Account, error)
}

// AccountAuthenticatorSvc verifies directory credentials
type AccountAuthenticatorSvc interface {
	// Authenticate returns the account when the password matches, apperrors.ErrUnauthorized otherwise.
	Authenticate(ctx context.Context, email string, password string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountAuthenticatorSvc
}
