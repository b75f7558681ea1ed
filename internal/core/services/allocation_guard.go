package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
)

// ledgerCommitter is the part of the ledger the guard writes through.
type ledgerCommitter interface {
	portsrepo.LedgerWriter
	portsrepo.ScopeLocker
}

// allocationGuard commits entries and keeps every book's balance non-negative.
type allocationGuard struct {
	BaseService
	ledger ledgerCommitter
}

// NewAllocationGuard creates a guard that serialises out entries per (organisation, blood type).
func NewAllocationGuard(ledger ledgerCommitter) portssvc.AllocationGuardSvc {
	return &allocationGuard{ledger: ledger}
}

var _ portssvc.AllocationGuardSvc = (*allocationGuard)(nil)

// Commit appends txn. Out entries are checked against the scope's availability
// while the scope lock is held, so two withdrawals can never both spend the same units.
func (g *allocationGuard) Commit(ctx context.Context, txn domain.Transaction) error {
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if txn.Direction == domain.DirectionIn {
		if err := g.ledger.AppendTransaction(ctx, txn); err != nil {
			g.LogError(ctx, err, "Failed to append in transaction", slog.String("transaction_id", txn.TransactionID))
			return err
		}
		return nil
	}

	err := g.ledger.WithScopeLock(ctx, txn.OrganisationID, txn.BloodType, func(tx portsrepo.LedgerTx) error {
		totals, err := tx.SumQuantities(ctx, txn.BloodType, txn.OrganisationID)
		if err != nil {
			return err
		}
		available := totals.ToAvailability(txn.OrganisationID, txn.BloodType).Available()
		if available < txn.Quantity {
			return &apperrors.InsufficientInventoryError{
				BloodType: string(txn.BloodType),
				Requested: txn.Quantity,
				Available: available,
			}
		}
		return tx.AppendTransaction(ctx, txn)
	})
	if err != nil {
		var insufficient *apperrors.InsufficientInventoryError
		if errors.As(err, &insufficient) {
			g.LogInfo(ctx, "Out transaction rejected",
				slog.String("organisation_id", txn.OrganisationID),
				slog.String("blood_type", string(txn.BloodType)),
				slog.Int64("requested", insufficient.Requested),
				slog.Int64("available", insufficient.Available))
			return err
		}
		g.LogError(ctx, err, "Failed to commit out transaction", slog.String("transaction_id", txn.TransactionID))
		return err
	}
	return nil
}
