package testutil

import (
	"context"
	"time"

	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Period]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Period](),
	}
}

func copyPeriod(p *subscription.Period) *subscription.Period {
	if p == nil {
		return nil
	}
	copied := *p
	if p.TrialEndsAt != nil {
		t := *p.TrialEndsAt
		copied.TrialEndsAt = &t
	}
	if p.NextBillingDate != nil {
		t := *p.NextBillingDate
		copied.NextBillingDate = &t
	}
	if p.CancelledAt != nil {
		t := *p.CancelledAt
		copied.CancelledAt = &t
	}
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, p *subscription.Period) error {
	if p == nil {
		return ierr.NewError("period cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPeriod(p))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Period, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription period not found").
			WithHint("Subscription period not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPeriod(p), nil
}

func (s *InMemorySubscriptionStore) GetActiveByUser(ctx context.Context, userID string) (*subscription.Period, error) {
	periods, err := s.InMemoryStore.List(ctx, userID, activeByUserFilterFn, periodSortFn)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, ierr.NewError("no active subscription period").
			WithReportableDetails(map[string]interface{}{
				"user_id": userID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPeriod(periods[0]), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, p *subscription.Period) error {
	if p == nil {
		return ierr.NewError("period cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyPeriod(p))
}

func (s *InMemorySubscriptionStore) IncrementUsage(ctx context.Context, periodID string, minutes decimal.Decimal, sms int) error {
	return s.InMemoryStore.Mutate(ctx, periodID, func(p *subscription.Period) (*subscription.Period, error) {
		if !p.PeriodStatus.IsUsable() {
			return nil, ierr.NewError("period is not active").
				WithReportableDetails(map[string]interface{}{
					"period_id": periodID,
					"status":    p.PeriodStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		updated := copyPeriod(p)
		updated.MinutesUsed = updated.MinutesUsed.Add(minutes)
		updated.SMSUsed += sms
		return updated, nil
	})
}

func (s *InMemorySubscriptionStore) ListElapsed(ctx context.Context, asOf time.Time) ([]*subscription.Period, error) {
	periods, err := s.InMemoryStore.List(ctx, asOf, elapsedFilterFn, periodSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*subscription.Period, len(periods))
	for i, p := range periods {
		result[i] = copyPeriod(p)
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) ListActive(ctx context.Context) ([]*subscription.Period, error) {
	periods, err := s.InMemoryStore.List(ctx, nil, activeFilterFn, periodSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*subscription.Period, len(periods))
	for i, p := range periods {
		result[i] = copyPeriod(p)
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) Rollover(ctx context.Context, periodID string, asOf time.Time, newStart, newEnd time.Time) (bool, error) {
	rolled := false
	err := s.InMemoryStore.Mutate(ctx, periodID, func(p *subscription.Period) (*subscription.Period, error) {
		// same guard the SQL rollover re-checks inside the update
		if p.PeriodStatus != types.SubscriptionPeriodStatusActive || p.PeriodEnd.After(asOf) {
			return p, nil
		}
		updated := copyPeriod(p)
		updated.PeriodStart = newStart
		updated.PeriodEnd = newEnd
		updated.MinutesUsed = decimal.Zero
		updated.SMSUsed = 0
		next := newEnd
		updated.NextBillingDate = &next
		updated.UpdatedAt = time.Now().UTC()
		rolled = true
		return updated, nil
	})
	return rolled, err
}

func activeByUserFilterFn(ctx context.Context, p *subscription.Period, filter interface{}) bool {
	userID, ok := filter.(string)
	if !ok || p == nil {
		return false
	}
	return p.UserID == userID && p.PeriodStatus.IsUsable()
}

func elapsedFilterFn(ctx context.Context, p *subscription.Period, filter interface{}) bool {
	asOf, ok := filter.(time.Time)
	if !ok || p == nil {
		return false
	}
	return p.PeriodStatus == types.SubscriptionPeriodStatusActive && !p.PeriodEnd.After(asOf)
}

func activeFilterFn(ctx context.Context, p *subscription.Period, _ interface{}) bool {
	return p != nil && p.PeriodStatus == types.SubscriptionPeriodStatusActive
}

func periodSortFn(i, j *subscription.Period) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}
