package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for subscription period persistence.
type Repository interface {
	// Create creates a new period
	Create(ctx context.Context, p *Period) error

	// Get retrieves a period by ID
	Get(ctx context.Context, id string) (*Period, error)

	// GetActiveByUser returns the single active or trialing period for a
	// user, or a not-found error
	GetActiveByUser(ctx context.Context, userID string) (*Period, error)

	// Update persists all mutable fields of a period
	Update(ctx context.Context, p *Period) error

	// IncrementUsage atomically adds the deltas to the period's counters at
	// the storage layer. Never implemented as read-modify-write.
	IncrementUsage(ctx context.Context, periodID string, minutes decimal.Decimal, sms int) error

	// ListElapsed returns active periods whose period end is at or before
	// the given time
	ListElapsed(ctx context.Context, asOf time.Time) ([]*Period, error)

	// ListActive returns all currently active paid periods
	ListActive(ctx context.Context) ([]*Period, error)

	// Rollover advances an elapsed period into its next cycle in one
	// statement guarded by the elapsed predicate. Returns false when the
	// predicate no longer matches (already rolled over).
	Rollover(ctx context.Context, periodID string, asOf time.Time, newStart, newEnd time.Time) (bool, error)
}
