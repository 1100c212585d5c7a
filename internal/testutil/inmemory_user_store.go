package testutil

import (
	"context"
	"time"

	"github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	copied := *u
	if u.TrialStartedAt != nil {
		t := *u.TrialStartedAt
		copied.TrialStartedAt = &t
	}
	if u.TrialEndsAt != nil {
		t := *u.TrialEndsAt
		copied.TrialEndsAt = &t
	}
	return &copied
}

// Create is not part of user.Repository; tests use it to seed accounts.
func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	return s.InMemoryStore.Create(ctx, u.ID, copyUser(u))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("user not found").
			WithHint("User not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, u *user.User) error {
	return s.InMemoryStore.Update(ctx, u.ID, copyUser(u))
}

func (s *InMemoryUserStore) ListExpiredTrials(ctx context.Context, asOf time.Time) ([]*user.User, error) {
	users, err := s.InMemoryStore.List(ctx, asOf, expiredTrialFilterFn, userSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*user.User, len(users))
	for i, u := range users {
		result[i] = copyUser(u)
	}
	return result, nil
}

func expiredTrialFilterFn(ctx context.Context, u *user.User, filter interface{}) bool {
	asOf, ok := filter.(time.Time)
	if !ok || u == nil {
		return false
	}
	if u.TrialStatus != types.TrialStatusActive || u.TrialEndsAt == nil {
		return false
	}
	// expiry boundary is inclusive
	return !u.TrialEndsAt.After(asOf)
}

func userSortFn(i, j *user.User) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}
