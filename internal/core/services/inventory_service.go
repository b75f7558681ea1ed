package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/platform/validation"
	"github.com/SscSPs/blood_bank_app/internal/utils/pagination"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// inventoryService implements the InventorySvcFacade interface
type inventoryService struct {
	BaseService
	ledger       portsrepo.LedgerReader
	classifier   portssvc.TransactionClassifierSvc
	guard        portssvc.AllocationGuardSvc
	availability portssvc.AvailabilitySvc
	validator    *validation.Helper
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	ledger portsrepo.LedgerReader,
	classifier portssvc.TransactionClassifierSvc,
	guard portssvc.AllocationGuardSvc,
	availability portssvc.AvailabilitySvc,
) portssvc.InventorySvcFacade {
	return &inventoryService{
		ledger:       ledger,
		classifier:   classifier,
		guard:        guard,
		availability: availability,
		validator:    validation.NewHelper(),
	}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

// RecordTransaction validates, classifies and commits one entry.
func (s *inventoryService) RecordTransaction(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, validation.Describe(err))
	}

	txn, err := s.classifier.Classify(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Commit(ctx, *txn); err != nil {
		return nil, err
	}
	s.availability.InvalidateScope(ctx, txn.OrganisationID)

	s.LogInfo(ctx, "Inventory transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("direction", string(txn.Direction)),
		slog.String("blood_type", string(txn.BloodType)),
		slog.Int64("quantity", txn.Quantity),
		slog.String("organisation_id", txn.OrganisationID))
	return txn, nil
}

// GetTransaction returns an entry if the actor may see it. Invisible entries are reported as not found.
func (s *inventoryService) GetTransaction(ctx context.Context, actor *domain.Account, transactionID string) (*domain.Transaction, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	txn, err := s.ledger.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	if !canSee(actor, txn) {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return txn, nil
}

// ListTransactions returns one page of the entries visible to the actor.
func (s *inventoryService) ListTransactions(ctx context.Context, actor *domain.Account, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	filter, err := baseFilter(params)
	if err != nil {
		return nil, err
	}

	var (
		txns      []domain.Transaction
		nextToken *string
	)
	switch actor.Role {
	case domain.RoleAdmin:
		filter.OrganisationID = params.OrganisationID
		filter.DonorID = params.DonorID
		filter.HospitalID = params.HospitalID
		txns, nextToken, err = s.ledger.QueryTransactions(ctx, filter)
	case domain.RoleDonor:
		filter.DonorID = stringRef(actor.AccountID)
		txns, nextToken, err = s.ledger.QueryTransactions(ctx, filter)
	case domain.RoleOrganisation:
		filter.OrganisationID = stringRef(actor.AccountID)
		txns, nextToken, err = s.ledger.QueryTransactions(ctx, filter)
	case domain.RoleHospital:
		txns, nextToken, err = s.listForHospital(ctx, actor.AccountID, filter)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrForbidden, actor.Role)
	}
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list transactions", slog.String("actor_id", actor.AccountID))
		}
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToListTransactionResponse(txns),
		NextToken:    nextToken,
	}, nil
}

// listForHospital merges the hospital's own entries with every in entry.
// Both queries share the cursor, so the merged page stays in keyset order.
func (s *inventoryService) listForHospital(ctx context.Context, hospitalID string, filter domain.LedgerFilter) ([]domain.Transaction, *string, error) {
	if filter.Direction != nil {
		if *filter.Direction == domain.DirectionOut {
			filter.HospitalID = stringRef(hospitalID)
		}
		return s.ledger.QueryTransactions(ctx, filter)
	}

	own := filter
	own.HospitalID = stringRef(hospitalID)
	ownTxns, ownMore, err := s.ledger.QueryTransactions(ctx, own)
	if err != nil {
		return nil, nil, err
	}

	intake := filter
	in := domain.DirectionIn
	intake.Direction = &in
	inTxns, inMore, err := s.ledger.QueryTransactions(ctx, intake)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(ownTxns)+len(inTxns))
	merged := make([]domain.Transaction, 0, len(ownTxns)+len(inTxns))
	for _, batch := range [][]domain.Transaction{ownTxns, inTxns} {
		for _, t := range batch {
			if _, dup := seen[t.TransactionID]; dup {
				continue
			}
			seen[t.TransactionID] = struct{}{}
			merged = append(merged, t)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filter.Ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if filter.Ascending {
			return a.TransactionID < b.TransactionID
		}
		return a.TransactionID > b.TransactionID
	})

	if len(merged) > filter.Limit || ownMore != nil || inMore != nil {
		if len(merged) > filter.Limit {
			merged = merged[:filter.Limit]
		}
		last := merged[len(merged)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		return merged, &token, nil
	}
	return merged, nil, nil
}

func baseFilter(params dto.ListTransactionsParams) (domain.LedgerFilter, error) {
	filter := domain.LedgerFilter{
		CreatedFrom: params.From,
		CreatedTo:   params.To,
		Ascending:   params.Order == "asc",
		Limit:       pagination.NormalizeLimit(params.Limit, defaultListLimit, maxListLimit),
		NextToken:   params.NextToken,
	}
	if params.BloodType != "" {
		bt, ok := domain.ParseBloodType(params.BloodType)
		if !ok {
			return filter, fmt.Errorf("%w: %q", apperrors.ErrInvalidBloodType, params.BloodType)
		}
		filter.BloodType = &bt
	}
	if params.Direction != "" {
		d := domain.Direction(params.Direction)
		if !d.IsValid() {
			return filter, fmt.Errorf("%w: direction must be 'in' or 'out'", apperrors.ErrValidation)
		}
		filter.Direction = &d
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return filter, fmt.Errorf("%w: 'to' must not be before 'from'", apperrors.ErrValidation)
	}
	return filter, nil
}

// canSee applies the per-role visibility rule to a single entry.
func canSee(actor *domain.Account, txn *domain.Transaction) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDonor:
		return txn.DonorID != nil && *txn.DonorID == actor.AccountID
	case domain.RoleHospital:
		return txn.Direction == domain.DirectionIn || (txn.HospitalID != nil && *txn.HospitalID == actor.AccountID)
	case domain.RoleOrganisation:
		return txn.OrganisationID == actor.AccountID
	default:
		return false
	}
}
