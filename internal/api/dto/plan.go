package dto

import (
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/types"
)

type PlanResponse struct {
	*plan.Plan
}

type ListPlansResponse struct {
	Items      []*PlanResponse          `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
