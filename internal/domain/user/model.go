package user

import (
	"time"

	"github.com/dialhaven/dialhaven/internal/types"
)

// User is the engine's view of the account store: trial state, subscription
// tier and the external payment reference. The full account entity (auth,
// profile) lives outside this service.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	TrialStatus      types.TrialStatus `json:"trial_status"`
	TrialStartedAt   *time.Time        `json:"trial_started_at,omitempty"`
	TrialEndsAt      *time.Time        `json:"trial_ends_at,omitempty"`
	SubscriptionTier string            `json:"subscription_tier"`
	StripeCustomerID string            `json:"stripe_customer_id,omitempty"`
	types.BaseModel
}

// HasUsedTrial reports whether the free trial is no longer available.
func (u *User) HasUsedTrial() bool {
	return u.TrialStatus != types.TrialStatusNone
}
