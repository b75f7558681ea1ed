package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// LedgerReader defines read operations over the inventory ledger.
// A scope of "" means every organisation's book.
type LedgerReader interface {
	// FindTransactionByID retrieves a single entry. Returns apperrors.ErrNotFound when absent.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// QueryTransactions returns entries matching every set filter field, newest first unless
	// filter.Ascending is set, plus a token for the next page when more rows exist.
	QueryTransactions(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, *string, error)

	// SumQuantities aggregates in/out quantities for one blood type within a scope.
	SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error)

	// SummarizeByBloodType aggregates in/out quantities for every blood type within a scope.
	SummarizeByBloodType(ctx context.Context, scope string) (map[domain.BloodType]domain.QuantityTotals, error)

	// FindScopesWithStock lists organisations whose net stock of bloodType is positive,
	// ordered by their earliest ledger entry and then by id.
	FindScopesWithStock(ctx context.Context, bloodType domain.BloodType) ([]string, error)
}

// LedgerWriter defines the single append operation of the ledger.
type LedgerWriter interface {
	AppendTransaction(ctx context.Context, txn domain.Transaction) error
}

// LedgerMaintenance holds the one narrow status mutation the ledger allows.
type LedgerMaintenance interface {
	// MarkExpired flips active in entries created at or before cutoff to expired.
	MarkExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	LedgerMaintenance
	ScopeLocker
}
