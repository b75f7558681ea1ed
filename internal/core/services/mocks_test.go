package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockLedgerReader is a mock type for the LedgerReader interface
type MockLedgerReader struct {
	mock.Mock
}

func (m *MockLedgerReader) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerReader) QueryTransactions(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, filter)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockLedgerReader) SumQuantities(ctx context.Context, bloodType domain.BloodType, scope string) (domain.QuantityTotals, error) {
	args := m.Called(ctx, bloodType, scope)
	return args.Get(0).(domain.QuantityTotals), args.Error(1)
}

func (m *MockLedgerReader) SummarizeByBloodType(ctx context.Context, scope string) (map[domain.BloodType]domain.QuantityTotals, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.BloodType]domain.QuantityTotals), args.Error(1)
}

func (m *MockLedgerReader) FindScopesWithStock(ctx context.Context, bloodType domain.BloodType) ([]string, error) {
	args := m.Called(ctx, bloodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAccountService is a mock type for the AccountSvcFacade interface
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) RegisterWalkInDonor(ctx context.Context, actor *domain.Account, req dto.NewDonorRequest) (*domain.Account, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) RegisterAnonymousDonor(ctx context.Context, actor *domain.Account, bloodType domain.BloodType) (*domain.Account, error) {
	args := m.Called(ctx, actor, bloodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, email string, password string) (*domain.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockSummaryCache is a mock type for the AvailabilitySummaryCache interface
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) GetSummary(ctx context.Context, scope string) (*domain.AvailabilitySummary, bool, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.AvailabilitySummary), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Version(ctx context.Context, scope string) (portsrepo.SummaryVersion, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(portsrepo.SummaryVersion), args.Error(1)
}

func (m *MockSummaryCache) SetSummary(ctx context.Context, summary domain.AvailabilitySummary, version portsrepo.SummaryVersion) (bool, error) {
	args := m.Called(ctx, summary, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, scopes ...string) error {
	args := m.Called(ctx, scopes)
	return args.Error(0)
}

func (m *MockSummaryCache) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// inProcessSummaryCache is a working AvailabilitySummaryCache for flow tests.
type inProcessSummaryCache struct {
	mu          sync.Mutex
	summaries   map[string]domain.AvailabilitySummary
	generations map[string]int64
	epoch       int64
	stores      int
}

func newInProcessSummaryCache() *inProcessSummaryCache {
	return &inProcessSummaryCache{
		summaries:   make(map[string]domain.AvailabilitySummary),
		generations: make(map[string]int64),
	}
}

func (c *inProcessSummaryCache) GetSummary(_ context.Context, scope string) (*domain.AvailabilitySummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary, ok := c.summaries[scope]
	if !ok {
		return nil, false, nil
	}
	return &summary, true, nil
}

func (c *inProcessSummaryCache) Version(_ context.Context, scope string) (portsrepo.SummaryVersion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return portsrepo.SummaryVersion{Scope: c.generations[scope], Epoch: c.epoch}, nil
}

func (c *inProcessSummaryCache) SetSummary(_ context.Context, summary domain.AvailabilitySummary, version portsrepo.SummaryVersion) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[summary.Scope] != version.Scope || c.epoch != version.Epoch {
		return false, nil
	}
	c.summaries[summary.Scope] = summary
	c.stores++
	return true, nil
}

func (c *inProcessSummaryCache) Invalidate(_ context.Context, scopes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, scope := range scopes {
		c.generations[scope]++
		delete(c.summaries, scope)
	}
	return nil
}

func (c *inProcessSummaryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.summaries = make(map[string]domain.AvailabilitySummary)
	return nil
}

func account(id string, role domain.Role, email string) *domain.Account {
	return &domain.Account{
		AccountID: id,
		Role:      role,
		Name:      id,
		Email:     email,
		Eligible:  true,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().UTC(),
			CreatedBy: id,
		},
	}
}

func strPtr(v string) *string { return &v }
