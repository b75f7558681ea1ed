package services

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/SscSPs/blood_bank_app/internal/dto"
)

// InventoryWriterSvc records ledger entries
type InventoryWriterSvc interface {
	// RecordTransaction validates, classifies and commits one in or out entry.
	RecordTransaction(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest) (*domain.Transaction, error)
}

// InventoryReaderSvc reads ledger entries visible to the actor
type InventoryReaderSvc interface {
	GetTransaction(ctx context.Context, actor *domain.Account, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, actor *domain.Account, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// InventorySvcFacade combines all inventory-related service interfaces
type InventorySvcFacade interface {
	InventoryWriterSvc
	InventoryReaderSvc
}

// AvailabilitySvc derives availability from the ledger.
type AvailabilitySvc interface {
	// GetAvailability computes Σin − Σout for one blood type. scope "" or "global" spans every book.
	GetAvailability(ctx context.Context, bloodType string, scope string) (*domain.Availability, error)

	// GetSummary computes availability for every blood type in a scope.
	GetSummary(ctx context.Context, scope string) (*domain.AvailabilitySummary, error)

	// InvalidateScope drops cached summaries after a write to organisationID's book.
	InvalidateScope(ctx context.Context, organisationID string)

	// InvalidateAll drops every cached summary, used after bulk status changes.
	InvalidateAll(ctx context.Context)
}

// TransactionClassifierSvc turns a request into a fully referenced, unsaved ledger entry.
type TransactionClassifierSvc interface {
	Classify(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest) (*domain.Transaction, error)
}

// AllocationGuardSvc commits entries, refusing out entries the scope cannot cover.
type AllocationGuardSvc interface {
	Commit(ctx context.Context, txn domain.Transaction) error
}

// ExpirySvc flags donated units that are past their shelf life.
type ExpirySvc interface {
	// SweepExpired runs a sweep on behalf of an admin.
	SweepExpired(ctx context.Context, actor *domain.Account) (*dto.ExpirySweepResponse, error)

	// RunSweep runs a sweep as the system, used by the background ticker.
	RunSweep(ctx context.Context) (*dto.ExpirySweepResponse, error)
}
