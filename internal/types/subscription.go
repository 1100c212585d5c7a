package types

import (
	ierr "github.com/dialhaven/dialhaven/internal/errors"
)

// SubscriptionPeriodStatus is the lifecycle state of a billing period.
// At most one period per user may be in an active-like state
// (active or trialing) at a time.
type SubscriptionPeriodStatus string

const (
	SubscriptionPeriodStatusTrialing  SubscriptionPeriodStatus = "trialing"
	SubscriptionPeriodStatusActive    SubscriptionPeriodStatus = "active"
	SubscriptionPeriodStatusCancelled SubscriptionPeriodStatus = "cancelled"
	SubscriptionPeriodStatusExpired   SubscriptionPeriodStatus = "expired"
)

func (s SubscriptionPeriodStatus) Validate() error {
	switch s {
	case SubscriptionPeriodStatusTrialing,
		SubscriptionPeriodStatusActive,
		SubscriptionPeriodStatusCancelled,
		SubscriptionPeriodStatusExpired:
		return nil
	default:
		return ierr.NewError("invalid subscription period status").
			WithReportableDetails(map[string]interface{}{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
}

// IsUsable reports whether usage may be metered against the period.
func (s SubscriptionPeriodStatus) IsUsable() bool {
	return s == SubscriptionPeriodStatusActive || s == SubscriptionPeriodStatusTrialing
}

// TrialStatus tracks whether a user has ever consumed their free trial.
type TrialStatus string

const (
	TrialStatusNone     TrialStatus = "none"
	TrialStatusActive   TrialStatus = "active"
	TrialStatusExpired  TrialStatus = "expired"
	TrialStatusUpgraded TrialStatus = "upgraded"
)

// SubscriptionTierNone is the sentinel tier for users with no plan.
const SubscriptionTierNone = "none"

// Trial allowances are product constants, not plan fields.
const (
	TrialIncludedMinutes = 50
	TrialIncludedSMS     = 50
	TrialLengthDays      = 7
	TrialPeriodDays      = 30
)
