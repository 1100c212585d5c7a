package service

import (
	"context"
	"fmt"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/cache"
	domainPlan "github.com/dialhaven/dialhaven/internal/domain/plan"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
)

const (
	cacheKeyPlanList   = "plans:all"
	cacheKeyPlanPrefix = "plan:"
)

// PlanService exposes the read-only plan catalog.
type PlanService interface {
	GetPlans(ctx context.Context) (*dto.ListPlansResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) GetPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	if val, found := s.Cache.Get(ctx, cacheKeyPlanList); found {
		if cached, ok := cache.UnmarshalCacheValue[dto.ListPlansResponse](val); ok {
			return cached, nil
		}
	}

	plans, err := s.PlanRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	response := &dto.ListPlansResponse{
		Items: make([]*dto.PlanResponse, len(plans)),
		Pagination: types.NewPaginationResponse(
			len(plans),
			types.FilterDefaultLimit,
			0,
		),
	}
	for i, p := range plans {
		response.Items[i] = &dto.PlanResponse{Plan: p}
	}

	s.Cache.Set(ctx, cacheKeyPlanList, response, cache.ExpiryDefaultInMemory)
	return response, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan ID is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation)
	}

	cacheKey := fmt.Sprintf("%s%s", cacheKeyPlanPrefix, id)
	if val, found := s.Cache.Get(ctx, cacheKey); found {
		if cached, ok := cache.UnmarshalCacheValue[domainPlan.Plan](val); ok {
			return &dto.PlanResponse{Plan: cached}, nil
		}
	}

	plan, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, cacheKey, plan, cache.ExpiryDefaultInMemory)
	return &dto.PlanResponse{Plan: plan}, nil
}
