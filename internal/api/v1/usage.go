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

type UsageHandler struct {
	service service.MeteringService
	log     *logger.Logger
}

func NewUsageHandler(service service.MeteringService, log *logger.Logger) *UsageHandler {
	return &UsageHandler{service: service, log: log}
}

// TrackUsage records a usage event for the authenticated user.
func (h *UsageHandler) TrackUsage(c *gin.Context) {
	var req dto.TrackUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind usage request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordUsage(c.Request.Context(), types.GetUserID(c.Request.Context()), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetUsageLimits returns the current allowance snapshot for the
// authenticated user.
func (h *UsageHandler) GetUsageLimits(c *gin.Context) {
	resp, err := h.service.GetUsageLimits(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUsageHistory lists the authenticated user's usage events, newest first.
func (h *UsageHandler) GetUsageHistory(c *gin.Context) {
	filter := types.NewUsageEventFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		h.log.Errorw("failed to bind usage filter", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetUsageHistory(c.Request.Context(), types.GetUserID(c.Request.Context()), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
