package repositories

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// LedgerTx is the view of the ledger available while a scope lock is held.
type LedgerTx interface {
	SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error)
	AppendTransaction(ctx context.Context, txn domain.Transaction) error
}

// ScopeLocker serialises writers of one (organisation, blood type) pair.
// fn runs with exclusive access to that pair; its appends commit only if fn returns nil.
type ScopeLocker interface {
	WithScopeLock(ctx context.Context, organisationID string, bloodType domain.BloodType, fn func(tx LedgerTx) error) error
}
