package subscription

import (
	"time"

	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// Period is one billing cycle's counter window for a user's subscription.
// Counters are mutated only through atomic increments at the storage layer
// and reset by the billing cycle reconciler on rollover.
type Period struct {
	ID                   string                         `json:"id"`
	UserID               string                         `json:"user_id"`
	PlanID               string                         `json:"plan_id"`
	PeriodStatus         types.SubscriptionPeriodStatus `json:"period_status"`
	PeriodStart          time.Time                      `json:"period_start"`
	PeriodEnd            time.Time                      `json:"period_end"`
	TrialEndsAt          *time.Time                     `json:"trial_ends_at,omitempty"`
	MinutesUsed          decimal.Decimal                `json:"minutes_used"`
	SMSUsed              int                            `json:"sms_used"`
	StripeSubscriptionID string                         `json:"stripe_subscription_id,omitempty"`
	NextBillingDate      *time.Time                     `json:"next_billing_date,omitempty"`
	CancelledAt          *time.Time                     `json:"cancelled_at,omitempty"`
	types.BaseModel
}

func (p *Period) Validate() error {
	if p.UserID == "" {
		return ierr.NewError("user_id is required").
			Mark(ierr.ErrValidation)
	}
	if p.PlanID == "" {
		return ierr.NewError("plan_id is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.PeriodStatus.Validate(); err != nil {
		return err
	}
	if !p.PeriodStart.Before(p.PeriodEnd) {
		return ierr.NewError("period_start must be before period_end").
			WithReportableDetails(map[string]interface{}{
				"period_start": p.PeriodStart,
				"period_end":   p.PeriodEnd,
			}).
			Mark(ierr.ErrValidation)
	}
	if p.MinutesUsed.IsNegative() || p.SMSUsed < 0 {
		return ierr.NewError("usage counters cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTrial reports whether the period is a trialing one.
func (p *Period) IsTrial() bool {
	return p.PeriodStatus == types.SubscriptionPeriodStatusTrialing
}

// OverageCharge is the derived overage owed for a period against its plan.
// It is never persisted; emitting it as an invoice item is the caller's job.
type OverageCharge struct {
	PeriodID       string          `json:"period_id"`
	MinutesOverage decimal.Decimal `json:"minutes_overage"`
	SMSOverage     int             `json:"sms_overage"`
	MinutesCharge  decimal.Decimal `json:"minutes_charge"`
	SMSCharge      decimal.Decimal `json:"sms_charge"`
	TotalCharge    decimal.Decimal `json:"total_charge"`
}
