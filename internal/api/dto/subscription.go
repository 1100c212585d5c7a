package dto

import (
	"time"

	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	"github.com/dialhaven/dialhaven/internal/validator"
	"github.com/shopspring/decimal"
)

type SubscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func (r *SubscribeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubscriptionPeriodResponse struct {
	*subscription.Period
	PlanDisplayName string `json:"plan_display_name,omitempty"`
}

type StartTrialResponse struct {
	TrialEndsAt time.Time                   `json:"trial_ends_at"`
	Period      *SubscriptionPeriodResponse `json:"period"`
}

type CancelSubscriptionResponse struct {
	PeriodID    string    `json:"period_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type OverageChargeResponse struct {
	PeriodID       string          `json:"period_id"`
	MinutesOverage decimal.Decimal `json:"minutes_overage"`
	SMSOverage     int             `json:"sms_overage"`
	MinutesCharge  decimal.Decimal `json:"minutes_charge"`
	SMSCharge      decimal.Decimal `json:"sms_charge"`
	TotalCharge    decimal.Decimal `json:"total_charge"`
}

func NewOverageChargeResponse(c *subscription.OverageCharge) *OverageChargeResponse {
	if c == nil {
		return nil
	}
	return &OverageChargeResponse{
		PeriodID:       c.PeriodID,
		MinutesOverage: c.MinutesOverage,
		SMSOverage:     c.SMSOverage,
		MinutesCharge:  c.MinutesCharge,
		SMSCharge:      c.SMSCharge,
		TotalCharge:    c.TotalCharge,
	}
}
