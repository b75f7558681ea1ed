package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/SscSPs/blood_bank_app/internal/utils/pagination"
)

const defaultQueryLimit = 50

type ledgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a ledger repository over store.
func NewLedgerRepository(store *Store) portsrepo.LedgerRepositoryFacade {
	return &ledgerRepository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*ledgerRepository)(nil)

// AppendTransaction adds a single entry. Append-only.
func (r *ledgerRepository) AppendTransaction(_ context.Context, txn domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.appendLocked(txn)
}

func (r *ledgerRepository) appendLocked(txn domain.Transaction) error {
	if _, exists := r.store.txnIndex[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s already recorded", apperrors.ErrDuplicate, txn.TransactionID)
	}
	r.store.txnIndex[txn.TransactionID] = len(r.store.transactions)
	r.store.transactions = append(r.store.transactions, txn)
	return nil
}

func (r *ledgerRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i, ok := r.store.txnIndex[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn := r.store.transactions[i]
	return &txn, nil
}

func (r *ledgerRepository) QueryTransactions(_ context.Context, filter domain.LedgerFilter) ([]domain.Transaction, *string, error) {
	var (
		cursorAt time.Time
		cursorID string
	)
	if filter.NextToken != nil && *filter.NextToken != "" {
		var err error
		cursorAt, cursorID, err = pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	r.store.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, txn := range r.store.transactions {
		if matches(txn, filter) {
			matched = append(matched, txn)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if filter.Ascending {
			return before(matched[i], matched[j])
		}
		return before(matched[j], matched[i])
	})

	if cursorID != "" {
		cursor := domain.Transaction{CreatedAt: cursorAt, TransactionID: cursorID}
		start := sort.Search(len(matched), func(i int) bool {
			if filter.Ascending {
				return before(cursor, matched[i])
			}
			return before(matched[i], cursor)
		})
		matched = matched[start:]
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	var nextToken *string
	if len(matched) > limit {
		last := matched[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextToken = &token
		matched = matched[:limit]
	}
	return matched, nextToken, nil
}

// before orders entries by creation time, then id, matching the Postgres keyset.
func before(a, b domain.Transaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.TransactionID < b.TransactionID
}

func matches(txn domain.Transaction, f domain.LedgerFilter) bool {
	if f.OrganisationID != nil && txn.OrganisationID != *f.OrganisationID {
		return false
	}
	if f.DonorID != nil && (txn.DonorID == nil || *txn.DonorID != *f.DonorID) {
		return false
	}
	if f.HospitalID != nil && (txn.HospitalID == nil || *txn.HospitalID != *f.HospitalID) {
		return false
	}
	if f.BloodType != nil && txn.BloodType != *f.BloodType {
		return false
	}
	if f.Direction != nil && txn.Direction != *f.Direction {
		return false
	}
	if f.CreatedFrom != nil && txn.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && txn.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func (r *ledgerRepository) SumQuantities(_ context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.sumLocked(bloodType, scope), nil
}

func (r *ledgerRepository) sumLocked(bloodType domain.BloodType, scope string) domain.QuantityTotals {
	var totals domain.QuantityTotals
	for _, txn := range r.store.transactions {
		if txn.BloodType != bloodType || (scope != "" && txn.OrganisationID != scope) {
			continue
		}
		addToTotals(&totals, txn)
	}
	return totals
}

func addToTotals(totals *domain.QuantityTotals, txn domain.Transaction) {
	switch txn.Direction {
	case domain.DirectionIn:
		totals.TotalIn += txn.Quantity
		if txn.Status == domain.StatusExpired {
			totals.ExpiredIn += txn.Quantity
		}
	case domain.DirectionOut:
		totals.TotalOut += txn.Quantity
	}
}

func (r *ledgerRepository) SummarizeByBloodType(_ context.Context, scope string) (map[domain.BloodType]domain.QuantityTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := make(map[domain.BloodType]domain.QuantityTotals)
	for _, txn := range r.store.transactions {
		if scope != "" && txn.OrganisationID != scope {
			continue
		}
		totals := summary[txn.BloodType]
		addToTotals(&totals, txn)
		summary[txn.BloodType] = totals
	}
	return summary, nil
}

func (r *ledgerRepository) FindScopesWithStock(_ context.Context, bloodType domain.BloodType) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	firstSeen := make(map[string]time.Time)
	net := make(map[string]int64)
	for _, txn := range r.store.transactions {
		if seen, ok := firstSeen[txn.OrganisationID]; !ok || txn.CreatedAt.Before(seen) {
			firstSeen[txn.OrganisationID] = txn.CreatedAt
		}
		if txn.BloodType != bloodType {
			continue
		}
		if txn.Direction == domain.DirectionIn {
			net[txn.OrganisationID] += txn.Quantity
		} else {
			net[txn.OrganisationID] -= txn.Quantity
		}
	}

	scopes := make([]string, 0, len(net))
	for org, qty := range net {
		if qty > 0 {
			scopes = append(scopes, org)
		}
	}
	sort.Slice(scopes, func(i, j int) bool {
		a, b := firstSeen[scopes[i]], firstSeen[scopes[j]]
		if !a.Equal(b) {
			return a.Before(b)
		}
		return scopes[i] < scopes[j]
	})
	return scopes, nil
}

func (r *ledgerRepository) MarkExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for i := range r.store.transactions {
		txn := &r.store.transactions[i]
		if txn.Direction == domain.DirectionIn && txn.Status == domain.StatusActive && !txn.CreatedAt.After(cutoff) {
			txn.Status = domain.StatusExpired
			n++
		}
	}
	return n, nil
}

// WithScopeLock runs fn while holding the (organisation, blood type) mutex.
// Appends made through tx are buffered and land atomically when fn succeeds.
func (r *ledgerRepository) WithScopeLock(ctx context.Context, organisationID string, bloodType domain.BloodType, fn func(tx portsrepo.LedgerTx) error) error {
	lock := r.store.scopeLock(organisationID, bloodType)
	lock.Lock()
	defer lock.Unlock()

	view := &lockedLedgerView{repo: r}
	if err := fn(view); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, txn := range view.pending {
		if _, exists := r.store.txnIndex[txn.TransactionID]; exists {
			return fmt.Errorf("%w: transaction %s already recorded", apperrors.ErrDuplicate, txn.TransactionID)
		}
	}
	for _, txn := range view.pending {
		if err := r.appendLocked(txn); err != nil {
			return err
		}
	}
	return nil
}

type lockedLedgerView struct {
	repo    *ledgerRepository
	pending []domain.Transaction
}

func (v *lockedLedgerView) SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	totals, err := v.repo.SumQuantities(ctx, bloodType, scope)
	if err != nil {
		return totals, err
	}
	for _, txn := range v.pending {
		if txn.BloodType == bloodType && (scope == "" || txn.OrganisationID == scope) {
			addToTotals(&totals, txn)
		}
	}
	return totals, nil
}

func (v *lockedLedgerView) AppendTransaction(_ context.Context, txn domain.Transaction) error {
	v.pending = append(v.pending, txn)
	return nil
}
