package v1

import (
	"net/http"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/service"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	trialService        service.TrialService
	billingCycleService service.BillingCycleService
	log                 *logger.Logger
}

func NewSubscriptionHandler(
	subscriptionService service.SubscriptionService,
	trialService service.TrialService,
	billingCycleService service.BillingCycleService,
	log *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		trialService:        trialService,
		billingCycleService: billingCycleService,
		log:                 log,
	}
}

// Subscribe puts the authenticated user onto a paid plan.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind subscribe request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.subscriptionService.Subscribe(c.Request.Context(), types.GetUserID(c.Request.Context()), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Cancel ends the authenticated user's active subscription.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	resp, err := h.subscriptionService.Cancel(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCurrent returns the authenticated user's active or trialing period.
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	resp, err := h.subscriptionService.GetCurrentPeriod(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCurrentOverage returns the overage the authenticated user's current
// period has accrued so far.
func (h *SubscriptionHandler) GetCurrentOverage(c *gin.Context) {
	resp, err := h.billingCycleService.GetCurrentOverage(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StartTrial activates the one-time free trial for the authenticated user.
func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	resp, err := h.trialService.StartFreeTrial(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
