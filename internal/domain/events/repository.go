package events

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for the usage ledger. The ledger is
// append-only: there is deliberately no update or delete operation.
type Repository interface {
	// Create appends one immutable ledger row
	Create(ctx context.Context, e *UsageEvent) error

	// List returns ledger rows matching the filter, newest first
	List(ctx context.Context, filter *types.UsageEventFilter) ([]*UsageEvent, error)

	// Count returns the number of rows matching the filter
	Count(ctx context.Context, filter *types.UsageEventFilter) (int, error)

	// SumQuantityByPeriod sums event quantities of one type for a period;
	// used to reconcile period counters against the ledger
	SumQuantityByPeriod(ctx context.Context, periodID string, usageType types.UsageType) (decimal.Decimal, error)
}
