package testutil

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/domain/plan"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

// Seed loads plans into the store, typically plan.DefaultPlans().
func (s *InMemoryPlanStore) Seed(ctx context.Context, plans []*plan.Plan) error {
	for _, p := range plans {
		if err := s.InMemoryStore.Create(ctx, p.ID, copyPlan(p)); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	plans, err := s.InMemoryStore.List(ctx, nil, planFilterFn, planSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*plan.Plan, len(plans))
	for i, p := range plans {
		result[i] = copyPlan(p)
	}
	return result, nil
}

func planFilterFn(ctx context.Context, p *plan.Plan, _ interface{}) bool {
	return p != nil && p.Status == types.StatusPublished
}

func planSortFn(i, j *plan.Plan) bool {
	if i == nil || j == nil {
		return false
	}
	return i.SortOrder < j.SortOrder
}
