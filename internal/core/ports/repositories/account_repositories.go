package repositories

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// AccountReader defines read operations for directory accounts
type AccountReader interface {
	// FindAccountByID retrieves an account by id. Returns apperrors.ErrNotFound when absent.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by case-insensitive email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountWriter defines write operations for directory accounts
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if the email is taken.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
