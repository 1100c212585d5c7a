package testutil

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/domain/events"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryEventStore implements events.Repository
type InMemoryEventStore struct {
	*InMemoryStore[*events.UsageEvent]
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		InMemoryStore: NewInMemoryStore[*events.UsageEvent](),
	}
}

func copyUsageEvent(e *events.UsageEvent) *events.UsageEvent {
	if e == nil {
		return nil
	}
	copied := *e
	copied.Metadata = lo.Assign(map[string]string{}, e.Metadata)
	return &copied
}

func (s *InMemoryEventStore) Create(ctx context.Context, e *events.UsageEvent) error {
	if e == nil {
		return ierr.NewError("usage event cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, e.ID, copyUsageEvent(e))
}

func (s *InMemoryEventStore) List(ctx context.Context, filter *types.UsageEventFilter) ([]*events.UsageEvent, error) {
	if filter == nil {
		filter = types.NewUsageEventFilter()
	}

	matched, err := s.InMemoryStore.List(ctx, filter, usageEventFilterFn, usageEventSortFn)
	if err != nil {
		return nil, err
	}

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]*events.UsageEvent, 0, end-offset)
	for _, e := range matched[offset:end] {
		result = append(result, copyUsageEvent(e))
	}
	return result, nil
}

func (s *InMemoryEventStore) Count(ctx context.Context, filter *types.UsageEventFilter) (int, error) {
	if filter == nil {
		filter = types.NewUsageEventFilter()
	}
	matched, err := s.InMemoryStore.List(ctx, filter, usageEventFilterFn, nil)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (s *InMemoryEventStore) SumQuantityByPeriod(ctx context.Context, periodID string, usageType types.UsageType) (decimal.Decimal, error) {
	filter := &types.UsageEventFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		PeriodID:    periodID,
		Type:        usageType,
	}
	matched, err := s.InMemoryStore.List(ctx, filter, usageEventFilterFn, nil)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, e := range matched {
		sum = sum.Add(e.Quantity)
	}
	return sum, nil
}

func usageEventFilterFn(ctx context.Context, e *events.UsageEvent, filter interface{}) bool {
	if e == nil {
		return false
	}
	f, ok := filter.(*types.UsageEventFilter)
	if !ok {
		return true
	}

	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.PeriodID != "" && e.PeriodID != f.PeriodID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && e.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}

func usageEventSortFn(i, j *events.UsageEvent) bool {
	if i == nil || j == nil {
		return false
	}
	return i.Timestamp.After(j.Timestamp)
}
