package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
)

type accountRepository struct {
	store *Store
}

// NewAccountRepository creates an account repository over store.
func NewAccountRepository(store *Store) portsrepo.AccountRepositoryFacade {
	return &accountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	email := domain.NormalizeEmail(account.Email)
	if _, exists := r.store.emailIndex[email]; exists {
		return fmt.Errorf("%w: account with email %s already exists", apperrors.ErrDuplicate, email)
	}
	if _, exists := r.store.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}

	account.Email = email
	r.store.accounts[account.AccountID] = account
	r.store.emailIndex[email] = account.AccountID
	return nil
}

func (r *accountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (r *accountRepository) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.emailIndex[domain.NormalizeEmail(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	acc := r.store.accounts[id]
	return &acc, nil
}
