package cron

import (
	"net/http"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingCronHandler exposes the billing batch jobs over HTTP so an external
// scheduler can drive them.
type BillingCronHandler struct {
	billingCycleService service.BillingCycleService
	trialService        service.TrialService
	logger              *logger.Logger
}

// NewBillingCronHandler creates a new billing cron handler
func NewBillingCronHandler(
	billingCycleService service.BillingCycleService,
	trialService service.TrialService,
	logger *logger.Logger,
) *BillingCronHandler {
	return &BillingCronHandler{
		billingCycleService: billingCycleService,
		trialService:        trialService,
		logger:              logger,
	}
}

// ResetBillingPeriods rolls every elapsed billing period into its next cycle.
func (h *BillingCronHandler) ResetBillingPeriods(c *gin.Context) {
	h.logger.Infow("starting billing period reset cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.CronRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request body", "error", err)
			c.Error(err)
			return
		}
	}

	resp, err := h.billingCycleService.ResetElapsedPeriods(c.Request.Context(), req.GetAsOf())
	if err != nil {
		h.logger.Errorw("failed to reset billing periods", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed billing period reset cron job")
	c.JSON(http.StatusOK, resp)
}

// ExpireTrials downgrades users whose free trial window has passed.
func (h *BillingCronHandler) ExpireTrials(c *gin.Context) {
	h.logger.Infow("starting trial expiry cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.CronRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request body", "error", err)
			c.Error(err)
			return
		}
	}

	resp, err := h.trialService.ExpireTrials(c.Request.Context(), req.GetAsOf())
	if err != nil {
		h.logger.Errorw("failed to expire trials", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed trial expiry cron job")
	c.JSON(http.StatusOK, resp)
}

// ProcessOverageCharges invoices active periods that exceeded their allowance.
func (h *BillingCronHandler) ProcessOverageCharges(c *gin.Context) {
	h.logger.Infow("starting overage charge cron job", "time", time.Now().UTC().Format(time.RFC3339))

	resp, err := h.billingCycleService.ProcessOverageCharges(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to process overage charges", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed overage charge cron job")
	c.JSON(http.StatusOK, resp)
}
