package user

import (
	"context"
	"time"
)

// Repository defines the interface for user state persistence.
type Repository interface {
	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*User, error)

	// Update persists trial/tier/payment-reference changes
	Update(ctx context.Context, u *User) error

	// ListExpiredTrials returns users whose trial is active and whose trial
	// end is at or before the given time
	ListExpiredTrials(ctx context.Context, asOf time.Time) ([]*User, error)
}
