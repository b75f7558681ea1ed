package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/platform/validation"
	"github.com/SscSPs/blood_bank_app/internal/utils"
	"github.com/google/uuid"
)

const (
	// walkInPlaceholder fills contact fields a walk-in donor did not provide.
	walkInPlaceholder = "N/A"
	// anonymousDonorName labels synthesised donors for unattributed contributions.
	anonymousDonorName = "Anonymous donor"
	// anonymousFallbackDomain is used when the recording actor's email has no domain.
	anonymousFallbackDomain = "walkin.local"
	defaultWalkInPassword   = "change-me-walk-in"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	validator      *validation.Helper
	walkInPassword string

	walkInHashOnce sync.Once
	walkInHash     string
	walkInHashErr  error
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithWalkInDonorPassword sets the placeholder password given to walk-in donors.
func WithWalkInDonorPassword(password string) AccountServiceOption {
	return func(s *accountService) {
		if password != "" {
			s.walkInPassword = password
		}
	}
}

// WithAccountClock overrides the clock used for audit fields and anonymous emails.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.Now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:    repo,
		validator:      validation.NewHelper(),
		walkInPassword: defaultWalkInPassword,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by email")
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, validation.Describe(err))
	}
	if !req.Role.IsRegistrable() {
		return nil, fmt.Errorf("%w: role %q cannot self-register", apperrors.ErrValidation, req.Role)
	}

	var bloodType *domain.BloodType
	if req.BloodType != nil {
		bt, ok := domain.ParseBloodType(*req.BloodType)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidBloodType, *req.BloodType)
		}
		bloodType = &bt
	}
	if req.Role == domain.RoleDonor && bloodType == nil {
		return nil, fmt.Errorf("%w: bloodType is required for donors", apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternal)
	}

	id := uuid.NewString()
	account := domain.Account{
		AccountID:    id,
		Role:         req.Role,
		Name:         strings.TrimSpace(req.Name),
		Email:        domain.NormalizeEmail(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		BloodType:    bloodType,
		Eligible:     true,
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields(id, s.CurrentTime()),
	}

	if err := s.save(ctx, account); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Account registered", slog.String("account_id", id), slog.String("role", string(account.Role)))
	return &account, nil
}

func (s *accountService) RegisterWalkInDonor(ctx context.Context, actor *domain.Account, req dto.NewDonorRequest) (*domain.Account, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, validation.Describe(err))
	}
	bloodType, ok := domain.ParseBloodType(req.BloodType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidBloodType, req.BloodType)
	}

	_, err := s.accountRepo.FindAccountByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, domain.NormalizeEmail(req.Email))
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to check walk-in donor email")
		return nil, err
	}

	donor, err := s.newDonor(actor, strings.TrimSpace(req.Name), req.Email, orPlaceholder(req.Phone), orPlaceholder(req.Address), bloodType)
	if err != nil {
		s.LogError(ctx, err, "Failed to prepare walk-in donor")
		return nil, err
	}
	if err := s.save(ctx, *donor); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Walk-in donor registered",
		slog.String("donor_id", donor.AccountID),
		slog.String("registered_by", actor.AccountID))
	return donor, nil
}

func (s *accountService) RegisterAnonymousDonor(ctx context.Context, actor *domain.Account, bloodType domain.BloodType) (*domain.Account, error) {
	emailDomain := actor.EmailDomain()
	if emailDomain == "" {
		emailDomain = anonymousFallbackDomain
	}
	email := fmt.Sprintf("anonymous+%d-%s@%s", s.CurrentTime().UnixNano(), uuid.NewString()[:8], emailDomain)

	donor, err := s.newDonor(actor, anonymousDonorName, email, walkInPlaceholder, walkInPlaceholder, bloodType)
	if err != nil {
		s.LogError(ctx, err, "Failed to prepare anonymous donor")
		return nil, err
	}
	if err := s.save(ctx, *donor); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Anonymous donor synthesised",
		slog.String("donor_id", donor.AccountID),
		slog.String("registered_by", actor.AccountID))
	return donor, nil
}

func (s *accountService) Authenticate(ctx context.Context, email string, password string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to load account for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return account, nil
}

func (s *accountService) newDonor(actor *domain.Account, name, email, phone, address string, bloodType domain.BloodType) (*domain.Account, error) {
	hash, err := s.walkInPasswordHash()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash walk-in password", apperrors.ErrInternal)
	}
	bt := bloodType
	return &domain.Account{
		AccountID:    uuid.NewString(),
		Role:         domain.RoleDonor,
		Name:         name,
		Email:        domain.NormalizeEmail(email),
		Phone:        phone,
		Address:      address,
		BloodType:    &bt,
		Eligible:     true,
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields(actor.AccountID, s.CurrentTime()),
	}, nil
}

// walkInPasswordHash hashes the shared placeholder password once per process.
func (s *accountService) walkInPasswordHash() (string, error) {
	s.walkInHashOnce.Do(func() {
		s.walkInHash, s.walkInHashErr = utils.HashPassword(s.walkInPassword)
	})
	return s.walkInHash, s.walkInHashErr
}

func (s *accountService) save(ctx context.Context, account domain.Account) error {
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, account.Email)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return err
	}
	return nil
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return walkInPlaceholder
	}
	return v
}
