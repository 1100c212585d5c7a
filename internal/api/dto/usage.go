package dto

import (
	"context"
	"time"

	"github.com/dialhaven/dialhaven/internal/domain/events"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/dialhaven/dialhaven/internal/validator"
	"github.com/shopspring/decimal"
)

type TrackUsageRequest struct {
	Type      types.UsageType   `json:"type" validate:"required"`
	Quantity  decimal.Decimal   `json:"quantity"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (r *TrackUsageRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.Quantity.IsNegative() {
		return ierr.NewError("quantity cannot be negative").
			WithHint("Usage quantity must be 0 or greater").
			WithReportableDetails(map[string]interface{}{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToUsageEvent builds the immutable ledger entry for this request.
func (r *TrackUsageRequest) ToUsageEvent(ctx context.Context, userID, periodID string) *events.UsageEvent {
	ts := time.Now().UTC()
	if r.Timestamp != nil {
		ts = r.Timestamp.UTC()
	}
	return &events.UsageEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_EVENT),
		UserID:    userID,
		PeriodID:  periodID,
		Type:      r.Type,
		Quantity:  r.Quantity,
		Timestamp: ts,
		Metadata:  r.Metadata,
		TenantID:  types.GetTenantID(ctx),
		CreatedAt: time.Now().UTC(),
	}
}

type UsageEventResponse struct {
	*events.UsageEvent
}

type ListUsageEventsResponse struct {
	Items      []*UsageEventResponse    `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// UsageLimitsResponse is the derived allowance snapshot for a user. Exactly
// one of the three shapes is populated: trial, paid, or no subscription.
type UsageLimitsResponse struct {
	HasSubscription bool `json:"has_subscription"`
	IsTrial         bool `json:"is_trial,omitempty"`

	Plan string `json:"plan,omitempty"`

	MinutesUsed      *decimal.Decimal `json:"minutes_used,omitempty"`
	MinutesIncluded  *int             `json:"minutes_included,omitempty"`
	MinutesRemaining *decimal.Decimal `json:"minutes_remaining,omitempty"`

	SMSUsed      *int `json:"sms_used,omitempty"`
	SMSIncluded  *int `json:"sms_included,omitempty"`
	SMSRemaining *int `json:"sms_remaining,omitempty"`

	DaysRemaining *int       `json:"days_remaining,omitempty"`
	WillRenewAt   *time.Time `json:"will_renew_at,omitempty"`
}
