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
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/google/uuid"
)

// transactionClassifier resolves who gave, who received and whose book an entry belongs to.
type transactionClassifier struct {
	BaseService
	accounts portssvc.AccountSvcFacade
	ledger   portsrepo.LedgerReader
}

// NewTransactionClassifier creates a classifier backed by the account directory and the ledger.
func NewTransactionClassifier(accounts portssvc.AccountSvcFacade, ledger portsrepo.LedgerReader) portssvc.TransactionClassifierSvc {
	return &transactionClassifier{
		accounts: accounts,
		ledger:   ledger,
	}
}

var _ portssvc.TransactionClassifierSvc = (*transactionClassifier)(nil)

// Classify returns an unsaved entry with every reference filled in.
// Walk-in and anonymous donors are created here, after all other references resolve.
func (s *transactionClassifier) Classify(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !req.Direction.IsValid() {
		return nil, fmt.Errorf("%w: direction must be 'in' or 'out'", apperrors.ErrValidation)
	}
	if !actor.Role.CanRecord(req.Direction) {
		return nil, fmt.Errorf("%w: %s may not record %s transactions", apperrors.ErrRoleNotPermitted, actor.Role, req.Direction)
	}
	bloodType, ok := domain.ParseBloodType(req.BloodType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidBloodType, req.BloodType)
	}

	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Direction:     req.Direction,
		BloodType:     bloodType,
		Quantity:      req.Quantity,
		Status:        domain.StatusActive,
		CreatedAt:     s.CurrentTime(),
		CreatedBy:     actor.AccountID,
	}

	var err error
	if req.Direction == domain.DirectionIn {
		err = s.classifyIn(ctx, actor, req, txn)
	} else {
		err = s.classifyOut(ctx, actor, req, txn)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionClassifier) classifyIn(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest, txn *domain.Transaction) error {
	if actor.Role == domain.RoleDonor {
		if req.DonorID != nil || req.NewDonor != nil {
			return fmt.Errorf("%w: donors record their own donations", apperrors.ErrValidation)
		}
		if req.OrganisationID == nil {
			return fmt.Errorf("%w: organisationId is required", apperrors.ErrValidation)
		}
		org, err := s.requireRole(ctx, *req.OrganisationID, domain.RoleOrganisation, apperrors.ErrScopeNotFound)
		if err != nil {
			return err
		}
		txn.DonorID = stringRef(actor.AccountID)
		txn.OrganisationID = org.AccountID
		txn.ContactEmail = actor.Email
		return nil
	}

	if req.DonorID != nil && req.NewDonor != nil {
		return fmt.Errorf("%w: donorId and newDonor are mutually exclusive", apperrors.ErrValidation)
	}

	switch {
	case actor.Role == domain.RoleOrganisation:
		txn.OrganisationID = actor.AccountID
	case req.OrganisationID != nil:
		org, err := s.requireRole(ctx, *req.OrganisationID, domain.RoleOrganisation, apperrors.ErrScopeNotFound)
		if err != nil {
			return err
		}
		txn.OrganisationID = org.AccountID
	default:
		txn.OrganisationID = actor.AccountID
	}

	switch {
	case actor.Role == domain.RoleHospital:
		txn.HospitalID = stringRef(actor.AccountID)
	case actor.Role == domain.RoleAdmin && req.HospitalID != nil:
		hospital, err := s.requireRole(ctx, *req.HospitalID, domain.RoleHospital, apperrors.ErrValidation)
		if err != nil {
			return err
		}
		txn.HospitalID = stringRef(hospital.AccountID)
	}

	var donor *domain.Account
	var err error
	switch {
	case req.DonorID != nil:
		donor, err = s.requireRole(ctx, *req.DonorID, domain.RoleDonor, apperrors.ErrInvalidDonor)
	case req.NewDonor != nil:
		donor, err = s.accounts.RegisterWalkInDonor(ctx, actor, *req.NewDonor)
	case actor.Role == domain.RoleOrganisation:
		donor = actor
	default:
		donor, err = s.accounts.RegisterAnonymousDonor(ctx, actor, txn.BloodType)
	}
	if err != nil {
		return err
	}

	txn.DonorID = stringRef(donor.AccountID)
	txn.ContactEmail = donor.Email
	return nil
}

func (s *transactionClassifier) classifyOut(ctx context.Context, actor *domain.Account, req dto.RecordTransactionRequest, txn *domain.Transaction) error {
	hospital := actor
	if actor.Role != domain.RoleHospital {
		if req.HospitalID == nil {
			return fmt.Errorf("%w: hospitalId is required", apperrors.ErrValidation)
		}
		var err error
		hospital, err = s.requireRole(ctx, *req.HospitalID, domain.RoleHospital, apperrors.ErrValidation)
		if err != nil {
			return err
		}
	}
	txn.HospitalID = stringRef(hospital.AccountID)
	txn.ContactEmail = hospital.Email

	if req.OrganisationID != nil {
		org, err := s.requireRole(ctx, *req.OrganisationID, domain.RoleOrganisation, apperrors.ErrScopeNotFound)
		if err != nil {
			return err
		}
		txn.OrganisationID = org.AccountID
		return nil
	}

	scopes, err := s.ledger.FindScopesWithStock(ctx, txn.BloodType)
	if err != nil {
		s.LogError(ctx, err, "Failed to scan scopes with stock", slog.String("blood_type", string(txn.BloodType)))
		return err
	}
	if len(scopes) == 0 {
		return &apperrors.InsufficientInventoryError{
			BloodType: string(txn.BloodType),
			Requested: txn.Quantity,
			Global:    true,
		}
	}
	txn.OrganisationID = scopes[0]
	s.LogDebug(ctx, "Out transaction scoped by stock scan", slog.String("organisation_id", scopes[0]))
	return nil
}

// requireRole loads an account and checks its role, reporting any mismatch as mismatchErr.
func (s *transactionClassifier) requireRole(ctx context.Context, accountID string, role domain.Role, mismatchErr error) (*domain.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not found", mismatchErr, accountID)
		}
		return nil, err
	}
	if account.Role != role {
		return nil, fmt.Errorf("%w: %s is not a %s", mismatchErr, accountID, role)
	}
	return account, nil
}

func stringRef(s string) *string {
	return &s
}
