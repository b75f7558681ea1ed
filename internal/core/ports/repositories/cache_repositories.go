package repositories

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// SummaryVersion identifies the cache generation a summary was computed under.
// Scope moves on every invalidation of that scope, Epoch on every full flush.
type SummaryVersion struct {
	Scope int64
	Epoch int64
}

// AvailabilitySummaryCache stores per-scope dashboard summaries between ledger writes.
type AvailabilitySummaryCache interface {
	// GetSummary returns the cached summary and true, or false on a miss.
	GetSummary(ctx context.Context, scope string) (*domain.AvailabilitySummary, bool, error)
	// Version reads the current generation of scope. Take it before reading the ledger.
	Version(ctx context.Context, scope string) (SummaryVersion, error)
	// SetSummary stores summary only if the scope is still at version and reports whether it did.
	SetSummary(ctx context.Context, summary domain.AvailabilitySummary, version SummaryVersion) (bool, error)
	// Invalidate bumps the generation of the given scopes and drops their summaries.
	Invalidate(ctx context.Context, scopes ...string) error
	// InvalidateAll bumps the epoch and drops every cached summary.
	InvalidateAll(ctx context.Context) error
}
