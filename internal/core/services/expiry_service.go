package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/middleware"
)

// expiryService flags donated units past their shelf life. Availability is not reduced.
type expiryService struct {
	BaseService
	ledger       portsrepo.LedgerMaintenance
	availability portssvc.AvailabilitySvc
}

// NewExpiryService creates a new expiry service
func NewExpiryService(ledger portsrepo.LedgerMaintenance, availability portssvc.AvailabilitySvc) portssvc.ExpirySvc {
	return &expiryService{
		ledger:       ledger,
		availability: availability,
	}
}

var _ portssvc.ExpirySvc = (*expiryService)(nil)

func (s *expiryService) SweepExpired(ctx context.Context, actor *domain.Account) (*dto.ExpirySweepResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may run the expiry sweep", apperrors.ErrForbidden)
	}
	return s.RunSweep(ctx)
}

func (s *expiryService) RunSweep(ctx context.Context) (*dto.ExpirySweepResponse, error) {
	cutoff := domain.ExpiryCutoff(s.CurrentTime())
	n, err := s.ledger.MarkExpired(ctx, cutoff)
	if err != nil {
		s.LogError(ctx, err, "Expiry sweep failed", slog.Time("cutoff", cutoff))
		return nil, err
	}
	if n > 0 {
		s.availability.InvalidateAll(ctx)
	}
	s.LogInfo(ctx, "Expiry sweep completed", slog.Int64("expired", n), slog.Time("cutoff", cutoff))
	return &dto.ExpirySweepResponse{Expired: n, Cutoff: cutoff}, nil
}

// ExpiryScheduler runs the expiry sweep on a fixed interval.
type ExpiryScheduler struct {
	Expiry   portssvc.ExpirySvc
	Interval time.Duration
	Logger   *slog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewExpiryScheduler creates a scheduler. An interval of zero or less disables it.
func NewExpiryScheduler(expiry portssvc.ExpirySvc, interval time.Duration, logger *slog.Logger) *ExpiryScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryScheduler{
		Expiry:   expiry,
		Interval: interval,
		Logger:   logger,
	}
}

// Start begins sweeping in the background. Calling Start twice is a no-op.
func (es *ExpiryScheduler) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.Interval <= 0 {
		es.Logger.Info("Expiry scheduler disabled")
		return
	}
	if es.ticker != nil {
		return
	}

	es.ticker = time.NewTicker(es.Interval)
	es.stop = make(chan struct{})
	es.wg.Add(1)
	go es.run(es.ticker, es.stop)

	es.Logger.Info("Expiry scheduler started", slog.Duration("interval", es.Interval))
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (es *ExpiryScheduler) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker == nil {
		return
	}
	es.ticker.Stop()
	close(es.stop)
	es.wg.Wait()
	es.ticker = nil
	es.Logger.Info("Expiry scheduler stopped")
}

func (es *ExpiryScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer es.wg.Done()

	es.sweep()
	for {
		select {
		case <-ticker.C:
			es.sweep()
		case <-stop:
			return
		}
	}
}

func (es *ExpiryScheduler) sweep() {
	ctx := middleware.WithLogger(context.Background(), es.Logger.With(slog.String("component", "expiry_scheduler")))
	if _, err := es.Expiry.RunSweep(ctx); err != nil {
		es.Logger.Error("Scheduled expiry sweep failed", slog.String("error", err.Error()))
	}
}
