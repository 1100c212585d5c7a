package plan

import (
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// Plan represents a subscription plan in the catalog. Plans are read-only at
// runtime from the engine's perspective; allowance or price changes only take
// effect for periods created afterwards.
type Plan struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	DisplayName         string          `json:"display_name"`
	Description         string          `json:"description,omitempty"`
	Price               decimal.Decimal `json:"price"`
	Currency            string          `json:"currency"`
	IncludedMinutes     int             `json:"included_minutes"`
	IncludedSMS         int             `json:"included_sms"`
	IncludedNumbers     int             `json:"included_numbers"`
	PricePerExtraMinute decimal.Decimal `json:"price_per_extra_minute"`
	PricePerExtraSMS    decimal.Decimal `json:"price_per_extra_sms"`
	SortOrder           int             `json:"sort_order"`
	types.BaseModel
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return ierr.NewError("plan name is required").
			Mark(ierr.ErrValidation)
	}
	if p.Price.IsNegative() {
		return ierr.NewError("plan price cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if p.IncludedMinutes < 0 || p.IncludedSMS < 0 || p.IncludedNumbers < 0 {
		return ierr.NewError("plan allowances cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if p.PricePerExtraMinute.IsNegative() || p.PricePerExtraSMS.IsNegative() {
		return ierr.NewError("overage prices cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
