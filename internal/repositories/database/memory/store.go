// Package memory provides in-process repositories for development and tests.
package memory

import (
	"sync"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
)

// Store holds directory accounts and ledger entries in memory.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	emailIndex   map[string]string // normalised email -> account id
	transactions []domain.Transaction
	txnIndex     map[string]int // transaction id -> position in transactions

	locksMu    sync.Mutex
	scopeLocks map[scopeKey]*sync.Mutex
}

type scopeKey struct {
	OrganisationID string
	BloodType      domain.BloodType
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]domain.Account),
		emailIndex: make(map[string]string),
		txnIndex:   make(map[string]int),
		scopeLocks: make(map[scopeKey]*sync.Mutex),
	}
}

// NewRepositoryProvider wires memory-backed repositories around a fresh store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return NewRepositoryProviderWithStore(NewStore())
}

// NewRepositoryProviderWithStore wires memory-backed repositories around an existing store.
func NewRepositoryProviderWithStore(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: NewAccountRepository(store),
		LedgerRepo:  NewLedgerRepository(store),
	}
}

func (s *Store) scopeLock(organisationID string, bloodType domain.BloodType) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	k := scopeKey{OrganisationID: organisationID, BloodType: bloodType}
	l, ok := s.scopeLocks[k]
	if !ok {
		l = &sync.Mutex{}
		s.scopeLocks[k] = l
	}
	return l
}
