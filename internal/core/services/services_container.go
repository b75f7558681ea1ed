package services

import (
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The directory comes first; classification and login depend on it.
	container.Account = NewAccountService(
		repos.AccountRepo,
		WithWalkInDonorPassword(cfg.WalkInDonorPassword),
	)
	container.Auth = NewAuthService(cfg, container.Account)

	var availabilityOpts []AvailabilityServiceOption
	if repos.SummaryCache != nil {
		availabilityOpts = append(availabilityOpts, WithSummaryCache(repos.SummaryCache))
	}
	container.Availability = NewAvailabilityService(repos.LedgerRepo, repos.AccountRepo, availabilityOpts...)

	classifier := NewTransactionClassifier(container.Account, repos.LedgerRepo)
	guard := NewAllocationGuard(repos.LedgerRepo)
	container.Inventory = NewInventoryService(repos.LedgerRepo, classifier, guard, container.Availability)
	container.Expiry = NewExpiryService(repos.LedgerRepo, container.Availability)

	return container
}
