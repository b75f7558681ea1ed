package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
)

// availabilityService derives availability from the ledger on every read.
type availabilityService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerReader
	accountRepo portsrepo.AccountReader
	cache       portsrepo.AvailabilitySummaryCache
}

// AvailabilityServiceOption configures the availability service
type AvailabilityServiceOption func(*availabilityService)

// WithSummaryCache enables caching of per-scope summaries. A nil cache leaves caching off.
func WithSummaryCache(cache portsrepo.AvailabilitySummaryCache) AvailabilityServiceOption {
	return func(s *availabilityService) {
		s.cache = cache
	}
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(ledgerRepo portsrepo.LedgerReader, accountRepo portsrepo.AccountReader, options ...AvailabilityServiceOption) portssvc.AvailabilitySvc {
	svc := &availabilityService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AvailabilitySvc = (*availabilityService)(nil)

func (s *availabilityService) GetAvailability(ctx context.Context, bloodType string, scope string) (*domain.Availability, error) {
	bt, ok := domain.ParseBloodType(bloodType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidBloodType, bloodType)
	}
	storeScope, label, err := s.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledgerRepo.SumQuantities(ctx, bt, storeScope)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger quantities",
			slog.String("blood_type", string(bt)), slog.String("scope", label))
		return nil, err
	}
	availability := totals.ToAvailability(label, bt)
	return &availability, nil
}

func (s *availabilityService) GetSummary(ctx context.Context, scope string) (*domain.AvailabilitySummary, error) {
	storeScope, label, err := s.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var (
		version   portsrepo.SummaryVersion
		cacheable bool
	)
	if s.cache != nil {
		cached, hit, err := s.cache.GetSummary(ctx, label)
		if err != nil {
			s.LogError(ctx, err, "Summary cache read failed", slog.String("scope", label))
		} else if hit {
			s.LogDebug(ctx, "Summary cache hit", slog.String("scope", label))
			return cached, nil
		}
		// Read before the ledger so an invalidation in between rejects the write below.
		if version, err = s.cache.Version(ctx, label); err != nil {
			s.LogError(ctx, err, "Summary cache version read failed", slog.String("scope", label))
		} else {
			cacheable = true
		}
	}

	totals, err := s.ledgerRepo.SummarizeByBloodType(ctx, storeScope)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarise ledger", slog.String("scope", label))
		return nil, err
	}

	summary := domain.AvailabilitySummary{
		Scope: label,
		Items: make([]domain.Availability, 0, len(domain.AllBloodTypes)),
	}
	for _, bt := range domain.AllBloodTypes {
		summary.Items = append(summary.Items, totals[bt].ToAvailability(label, bt))
	}

	if cacheable {
		stored, err := s.cache.SetSummary(ctx, summary, version)
		switch {
		case err != nil:
			s.LogError(ctx, err, "Summary cache write failed", slog.String("scope", label))
		case !stored:
			s.LogDebug(ctx, "Summary changed while computing; not cached", slog.String("scope", label))
		}
	}
	return &summary, nil
}

func (s *availabilityService) InvalidateScope(ctx context.Context, organisationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, organisationID, domain.GlobalScope); err != nil {
		s.LogError(ctx, err, "Summary cache invalidation failed", slog.String("organisation_id", organisationID))
	}
}

func (s *availabilityService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.LogError(ctx, err, "Summary cache flush failed")
	}
}

// resolveScope maps a requested scope to the store scope ("" for global) and its display label.
func (s *availabilityService) resolveScope(ctx context.Context, scope string) (string, string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || strings.EqualFold(scope, domain.GlobalScope) {
		return "", domain.GlobalScope, nil
	}

	account, err := s.accountRepo.FindAccountByID(ctx, scope)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", "", fmt.Errorf("%w: %s", apperrors.ErrScopeNotFound, scope)
		}
		s.LogError(ctx, err, "Failed to resolve availability scope", slog.String("scope", scope))
		return "", "", err
	}
	if !account.Role.OwnsBook() {
		return "", "", fmt.Errorf("%w: %s", apperrors.ErrScopeNotFound, scope)
	}
	return account.AccountID, account.AccountID, nil
}
