package v1

import (
	"net/http"

	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	service service.PlanService
	log     *logger.Logger
}

func NewPlanHandler(service service.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{service: service, log: log}
}

// ListPlans returns the plan catalog ordered for display.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	resp, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPlan returns a single plan by ID.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPlan(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
