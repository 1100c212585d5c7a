package events

import (
	"time"

	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// UsageEvent is one ledger entry. Rows are immutable once written; the
// ledger is append-only and is the source of truth the period counters can
// always be reconciled against.
type UsageEvent struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	PeriodID  string            `json:"period_id"`
	Type      types.UsageType   `json:"type"`
	Quantity  decimal.Decimal   `json:"quantity"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	TenantID  string            `json:"tenant_id"`
	CreatedAt time.Time         `json:"created_at"`
}

func (e *UsageEvent) Validate() error {
	if e.UserID == "" {
		return ierr.NewError("user_id is required").
			Mark(ierr.ErrValidation)
	}
	if e.PeriodID == "" {
		return ierr.NewError("period_id is required").
			Mark(ierr.ErrValidation)
	}
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.Quantity.IsNegative() {
		return ierr.NewError("quantity cannot be negative").
			WithReportableDetails(map[string]interface{}{
				"quantity": e.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
