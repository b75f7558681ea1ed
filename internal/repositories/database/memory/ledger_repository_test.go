package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo portsrepo.LedgerRepositoryFacade
	base time.Time
}

func (s *LedgerRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = NewLedgerRepository(NewStore())
	s.base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func strPtr(v string) *string { return &v }

func (s *LedgerRepositoryTestSuite) entry(id string, dir domain.Direction, bt domain.BloodType, qty int64, org string, offset time.Duration) domain.Transaction {
	txn := domain.Transaction{
		TransactionID:  id,
		Direction:      dir,
		BloodType:      bt,
		Quantity:       qty,
		OrganisationID: org,
		ContactEmail:   "desk@" + org + ".test",
		Status:         domain.StatusActive,
		CreatedAt:      s.base.Add(offset),
	}
	if dir == domain.DirectionOut {
		txn.HospitalID = strPtr("hosp-1")
	} else {
		txn.DonorID = strPtr("donor-" + id)
	}
	return txn
}

func (s *LedgerRepositoryTestSuite) seed(txns ...domain.Transaction) {
	for _, txn := range txns {
		s.Require().NoError(s.repo.AppendTransaction(s.ctx, txn))
	}
}

func (s *LedgerRepositoryTestSuite) TestAppendAndFind() {
	txn := s.entry("t1", domain.DirectionIn, domain.BloodTypeAPositive, 3, "org-a", 0)
	s.seed(txn)

	found, err := s.repo.FindTransactionByID(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(txn, *found)

	_, err = s.repo.FindTransactionByID(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)

	err = s.repo.AppendTransaction(s.ctx, txn)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *LedgerRepositoryTestSuite) TestSumQuantities_ScopeAndGlobal() {
	s.seed(
		s.entry("t1", domain.DirectionIn, domain.BloodTypeAPositive, 5, "org-a", 0),
		s.entry("t2", domain.DirectionIn, domain.BloodTypeAPositive, 4, "org-b", time.Minute),
		s.entry("t3", domain.DirectionOut, domain.BloodTypeAPositive, 2, "org-a", 2*time.Minute),
		s.entry("t4", domain.DirectionIn, domain.BloodTypeONegative, 7, "org-a", 3*time.Minute),
	)

	orgA, err := s.repo.SumQuantities(s.ctx, domain.BloodTypeAPositive, "org-a")
	s.Require().NoError(err)
	s.Equal(domain.QuantityTotals{TotalIn: 5, TotalOut: 2}, orgA)

	global, err := s.repo.SumQuantities(s.ctx, domain.BloodTypeAPositive, "")
	s.Require().NoError(err)
	s.Equal(domain.QuantityTotals{TotalIn: 9, TotalOut: 2}, global)

	none, err := s.repo.SumQuantities(s.ctx, domain.BloodTypeABNegative, "")
	s.Require().NoError(err)
	s.Equal(domain.QuantityTotals{}, none)

	summary, err := s.repo.SummarizeByBloodType(s.ctx, "org-a")
	s.Require().NoError(err)
	s.Equal(int64(3), summary[domain.BloodTypeAPositive].TotalIn-summary[domain.BloodTypeAPositive].TotalOut)
	s.Equal(int64(7), summary[domain.BloodTypeONegative].TotalIn)
	s.Len(summary, 2)
}

func (s *LedgerRepositoryTestSuite) TestQueryTransactions_FiltersAndOrder() {
	s.seed(
		s.entry("t1", domain.DirectionIn, domain.BloodTypeAPositive, 1, "org-a", 0),
		s.entry("t2", domain.DirectionIn, domain.BloodTypeBPositive, 1, "org-a", time.Minute),
		s.entry("t3", domain.DirectionOut, domain.BloodTypeAPositive, 1, "org-a", 2*time.Minute),
		s.entry("t4", domain.DirectionIn, domain.BloodTypeAPositive, 1, "org-b", 3*time.Minute),
	)

	org := "org-a"
	bt := domain.BloodTypeAPositive
	got, next, err := s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{OrganisationID: &org, BloodType: &bt})
	s.Require().NoError(err)
	s.Nil(next)
	s.Require().Len(got, 2)
	s.Equal("t3", got[0].TransactionID, "newest first by default")
	s.Equal("t1", got[1].TransactionID)

	dir := domain.DirectionIn
	from := s.base.Add(30 * time.Second)
	got, _, err = s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{Direction: &dir, CreatedFrom: &from, Ascending: true})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("t2", got[0].TransactionID)
	s.Equal("t4", got[1].TransactionID)

	got, _, err = s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{HospitalID: strPtr("hosp-1")})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("t3", got[0].TransactionID)

	got, _, err = s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{DonorID: strPtr("donor-t2")})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("t2", got[0].TransactionID)
}

func (s *LedgerRepositoryTestSuite) TestQueryTransactions_Pagination() {
	// Two entries share a timestamp so the id tie-break is exercised
	s.seed(
		s.entry("a", domain.DirectionIn, domain.BloodTypeOPositive, 1, "org-a", 0),
		s.entry("b", domain.DirectionIn, domain.BloodTypeOPositive, 1, "org-a", time.Minute),
		s.entry("c", domain.DirectionIn, domain.BloodTypeOPositive, 1, "org-a", time.Minute),
		s.entry("d", domain.DirectionIn, domain.BloodTypeOPositive, 1, "org-a", 2*time.Minute),
		s.entry("e", domain.DirectionIn, domain.BloodTypeOPositive, 1, "org-a", 3*time.Minute),
	)

	var seen []string
	var token *string
	for page := 0; page < 5; page++ {
		got, next, err := s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{Limit: 2, NextToken: token})
		s.Require().NoError(err)
		for _, txn := range got {
			seen = append(seen, txn.TransactionID)
		}
		if next == nil {
			break
		}
		token = next
	}
	s.Equal([]string{"e", "d", "c", "b", "a"}, seen)

	bad := "%%%"
	_, _, err := s.repo.QueryTransactions(s.ctx, domain.LedgerFilter{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerRepositoryTestSuite) TestFindScopesWithStock_ScanOrder() {
	s.seed(
		s.entry("t1", domain.DirectionIn, domain.BloodTypeONegative, 1, "org-late", 0),
		s.entry("t0", domain.DirectionIn, domain.BloodTypeBPositive, 1, "org-early", -time.Hour),
		s.entry("t2", domain.DirectionIn, domain.BloodTypeONegative, 2, "org-early", time.Minute),
		s.entry("t3", domain.DirectionIn, domain.BloodTypeONegative, 1, "org-empty", 2*time.Minute),
		s.entry("t4", domain.DirectionOut, domain.BloodTypeONegative, 1, "org-empty", 3*time.Minute),
	)

	scopes, err := s.repo.FindScopesWithStock(s.ctx, domain.BloodTypeONegative)
	s.Require().NoError(err)
	s.Equal([]string{"org-early", "org-late"}, scopes)

	scopes, err = s.repo.FindScopesWithStock(s.ctx, domain.BloodTypeABPositive)
	s.Require().NoError(err)
	s.Empty(scopes)
}

func (s *LedgerRepositoryTestSuite) TestMarkExpired() {
	s.seed(
		s.entry("old-in", domain.DirectionIn, domain.BloodTypeAPositive, 2, "org-a", -50*24*time.Hour),
		s.entry("old-out", domain.DirectionOut, domain.BloodTypeAPositive, 1, "org-a", -49*24*time.Hour),
		s.entry("fresh-in", domain.DirectionIn, domain.BloodTypeAPositive, 4, "org-a", 0),
	)

	cutoff := domain.ExpiryCutoff(s.base)
	n, err := s.repo.MarkExpired(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.repo.MarkExpired(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(int64(0), n, "already expired entries are not counted twice")

	totals, err := s.repo.SumQuantities(s.ctx, domain.BloodTypeAPositive, "org-a")
	s.Require().NoError(err)
	s.Equal(domain.QuantityTotals{TotalIn: 6, TotalOut: 1, ExpiredIn: 2}, totals)

	out, err := s.repo.FindTransactionByID(s.ctx, "old-out")
	s.Require().NoError(err)
	s.Equal(domain.StatusActive, out.Status)
}

func (s *LedgerRepositoryTestSuite) TestWithScopeLock_CommitsOnlyOnSuccess() {
	failure := errors.New("rejected")
	err := s.repo.WithScopeLock(s.ctx, "org-a", domain.BloodTypeAPositive, func(tx portsrepo.LedgerTx) error {
		s.Require().NoError(tx.AppendTransaction(s.ctx, s.entry("t1", domain.DirectionIn, domain.BloodTypeAPositive, 1, "org-a", 0)))
		return failure
	})
	s.ErrorIs(err, failure)
	_, err = s.repo.FindTransactionByID(s.ctx, "t1")
	s.ErrorIs(err, apperrors.ErrNotFound)

	err = s.repo.WithScopeLock(s.ctx, "org-a", domain.BloodTypeAPositive, func(tx portsrepo.LedgerTx) error {
		s.Require().NoError(tx.AppendTransaction(s.ctx, s.entry("t2", domain.DirectionIn, domain.BloodTypeAPositive, 3, "org-a", 0)))
		totals, err := tx.SumQuantities(s.ctx, domain.BloodTypeAPositive, "org-a")
		s.Require().NoError(err)
		s.Equal(int64(3), totals.TotalIn, "pending appends are visible inside the lock")
		return nil
	})
	s.Require().NoError(err)
	_, err = s.repo.FindTransactionByID(s.ctx, "t2")
	s.NoError(err)
}

func TestLedgerRepository(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func TestWithScopeLock_SerialisesSameScope(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(NewStore())
	require.NoError(t, repo.AppendTransaction(ctx, domain.Transaction{
		TransactionID: "seed", Direction: domain.DirectionIn, BloodType: domain.BloodTypeAPositive,
		Quantity: 10, OrganisationID: "org-a", Status: domain.StatusActive, CreatedAt: time.Now(),
	}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.WithScopeLock(ctx, "org-a", domain.BloodTypeAPositive, func(tx portsrepo.LedgerTx) error {
				totals, err := tx.SumQuantities(ctx, domain.BloodTypeAPositive, "org-a")
				if err != nil {
					return err
				}
				if totals.TotalIn-totals.TotalOut < 1 {
					return apperrors.ErrInsufficientInventory
				}
				hospital := "hosp-1"
				if err := tx.AppendTransaction(ctx, domain.Transaction{
					TransactionID: "out-" + string(rune('a'+i)), Direction: domain.DirectionOut,
					BloodType: domain.BloodTypeAPositive, Quantity: 1, OrganisationID: "org-a",
					HospitalID: &hospital, Status: domain.StatusActive, CreatedAt: time.Now(),
				}); err != nil {
					return err
				}
				mu.Lock()
				committed++
				mu.Unlock()
				return nil
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, committed)
	totals, err := repo.SumQuantities(ctx, domain.BloodTypeAPositive, "org-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.TotalIn-totals.TotalOut)
}
