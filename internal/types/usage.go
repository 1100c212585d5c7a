package types

import (
	"time"

	ierr "github.com/dialhaven/dialhaven/internal/errors"
)

// UsageType identifies the metered unit a usage event carries.
type UsageType string

const (
	UsageTypeCallMinute UsageType = "call_minute"
	UsageTypeSMS        UsageType = "sms"
)

func (t UsageType) Validate() error {
	switch t {
	case UsageTypeCallMinute, UsageTypeSMS:
		return nil
	default:
		return ierr.NewError("invalid usage type").
			WithHint("Usage type must be one of call_minute or sms").
			WithReportableDetails(map[string]interface{}{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
}

// UsageEventFilter narrows ledger queries. Zero values mean no constraint.
type UsageEventFilter struct {
	*QueryFilter
	UserID    string     `json:"user_id,omitempty" form:"user_id"`
	PeriodID  string     `json:"period_id,omitempty" form:"period_id"`
	Type      UsageType  `json:"type,omitempty" form:"type"`
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func NewUsageEventFilter() *UsageEventFilter {
	return &UsageEventFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *UsageEventFilter) Validate() error {
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if f.Type != "" {
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("end_time cannot be before start_time").
			Mark(ierr.ErrValidation)
	}
	return nil
}
