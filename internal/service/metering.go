package service

import (
	"context"
	"math"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MeteringService records usage events and exposes allowance reads.
type MeteringService interface {
	// RecordUsage appends a ledger event and bumps the active period's
	// counters. Over-allowance usage is still recorded; only the absence of
	// an active or trialing period fails the call.
	RecordUsage(ctx context.Context, userID string, req *dto.TrackUsageRequest) (*dto.UsageEventResponse, error)

	// GetUsageLimits returns the allowance snapshot for a user, always read
	// from current persisted state.
	GetUsageLimits(ctx context.Context, userID string) (*dto.UsageLimitsResponse, error)

	// GetUsageHistory pages through the user's ledger, newest first.
	GetUsageHistory(ctx context.Context, userID string, filter *types.UsageEventFilter) (*dto.ListUsageEventsResponse, error)
}

type meteringService struct {
	ServiceParams
}

func NewMeteringService(params ServiceParams) MeteringService {
	return &meteringService{ServiceParams: params}
}

func (s *meteringService) RecordUsage(ctx context.Context, userID string, req *dto.TrackUsageRequest) (*dto.UsageEventResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no active subscription or trial").
				WithHint("Start a trial or subscribe to a plan before using the service").
				WithReportableDetails(map[string]interface{}{
					"user_id": userID,
				}).
				Mark(ierr.ErrNoActiveSubscription)
		}
		return nil, err
	}

	event := req.ToUsageEvent(ctx, userID, period.ID)

	minutesDelta := decimal.Zero
	smsDelta := 0
	switch req.Type {
	case types.UsageTypeCallMinute:
		minutesDelta = req.Quantity
	case types.UsageTypeSMS:
		// SMS are whole messages; fractional quantities round to nearest
		smsDelta = int(req.Quantity.Round(0).IntPart())
	}

	// The append and the increment must land together: a counter without a
	// ledger row (or the reverse) must not be observable after a crash.
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.EventRepo.Create(txCtx, event); err != nil {
			return err
		}
		if minutesDelta.IsZero() && smsDelta == 0 {
			return nil
		}
		return s.SubRepo.IncrementUsage(txCtx, period.ID, minutesDelta, smsDelta)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded usage",
		"user_id", userID,
		"period_id", period.ID,
		"type", req.Type,
		"quantity", req.Quantity.String())

	s.warnIfOverAllowance(ctx, userID)

	return &dto.UsageEventResponse{UsageEvent: event}, nil
}

// warnIfOverAllowance raises a soft warning once usage crosses the included
// allowance. Recording itself is never rejected for overage.
func (s *meteringService) warnIfOverAllowance(ctx context.Context, userID string) {
	limits, err := s.GetUsageLimits(ctx, userID)
	if err != nil {
		s.Logger.Errorw("failed to check usage limits after recording", "user_id", userID, "error", err)
		return
	}

	minutesOver, smsOver := overAllowance(limits)
	if minutesOver || smsOver {
		s.Logger.Warnw("user exceeded included usage allowance",
			"user_id", userID,
			"minutes_over", minutesOver,
			"sms_over", smsOver)
	}
}

// overAllowance reports which dimensions sit strictly above their included
// allowance. Landing exactly on the allowance is not an overage.
func overAllowance(limits *dto.UsageLimitsResponse) (minutesOver, smsOver bool) {
	if limits.MinutesUsed != nil && limits.MinutesIncluded != nil {
		minutesOver = limits.MinutesUsed.GreaterThan(decimal.NewFromInt(int64(*limits.MinutesIncluded)))
	}
	if limits.SMSUsed != nil && limits.SMSIncluded != nil {
		smsOver = *limits.SMSUsed > *limits.SMSIncluded
	}
	return minutesOver, smsOver
}

func (s *meteringService) GetUsageLimits(ctx context.Context, userID string) (*dto.UsageLimitsResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}

	u, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.TrialStatus == types.TrialStatusActive {
		return s.trialLimits(ctx, userID, u.TrialEndsAt)
	}

	period, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &dto.UsageLimitsResponse{HasSubscription: false}, nil
		}
		return nil, err
	}

	plan, err := s.PlanRepo.Get(ctx, period.PlanID)
	if err != nil {
		return nil, err
	}

	minutesRemaining := decimal.NewFromInt(int64(plan.IncludedMinutes)).Sub(period.MinutesUsed)
	if minutesRemaining.IsNegative() {
		minutesRemaining = decimal.Zero
	}
	smsRemaining := plan.IncludedSMS - period.SMSUsed
	if smsRemaining < 0 {
		smsRemaining = 0
	}

	return &dto.UsageLimitsResponse{
		HasSubscription:  true,
		Plan:             plan.DisplayName,
		MinutesUsed:      lo.ToPtr(period.MinutesUsed),
		MinutesIncluded:  lo.ToPtr(plan.IncludedMinutes),
		MinutesRemaining: lo.ToPtr(minutesRemaining),
		SMSUsed:          lo.ToPtr(period.SMSUsed),
		SMSIncluded:      lo.ToPtr(plan.IncludedSMS),
		SMSRemaining:     lo.ToPtr(smsRemaining),
		WillRenewAt:      lo.ToPtr(period.PeriodEnd),
	}, nil
}

func (s *meteringService) trialLimits(ctx context.Context, userID string, trialEndsAt *time.Time) (*dto.UsageLimitsResponse, error) {
	minutesUsed := decimal.Zero
	smsUsed := 0
	if period, err := s.SubRepo.GetActiveByUser(ctx, userID); err == nil {
		minutesUsed = period.MinutesUsed
		smsUsed = period.SMSUsed
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	minutesRemaining := decimal.NewFromInt(types.TrialIncludedMinutes).Sub(minutesUsed)
	if minutesRemaining.IsNegative() {
		minutesRemaining = decimal.Zero
	}
	smsRemaining := types.TrialIncludedSMS - smsUsed
	if smsRemaining < 0 {
		smsRemaining = 0
	}

	daysRemaining := 0
	if trialEndsAt != nil {
		if remaining := time.Until(*trialEndsAt); remaining > 0 {
			daysRemaining = int(math.Ceil(remaining.Hours() / 24))
		}
	}

	return &dto.UsageLimitsResponse{
		HasSubscription:  true,
		IsTrial:          true,
		MinutesUsed:      lo.ToPtr(minutesUsed),
		MinutesIncluded:  lo.ToPtr(types.TrialIncludedMinutes),
		MinutesRemaining: lo.ToPtr(minutesRemaining),
		SMSUsed:          lo.ToPtr(smsUsed),
		SMSIncluded:      lo.ToPtr(types.TrialIncludedSMS),
		SMSRemaining:     lo.ToPtr(smsRemaining),
		DaysRemaining:    lo.ToPtr(daysRemaining),
	}, nil
}

func (s *meteringService) GetUsageHistory(ctx context.Context, userID string, filter *types.UsageEventFilter) (*dto.ListUsageEventsResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}
	if filter == nil {
		filter = types.NewUsageEventFilter()
	}
	filter.UserID = userID
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	events, err := s.EventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.EventRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListUsageEventsResponse{
		Items: make([]*dto.UsageEventResponse, len(events)),
		Pagination: types.NewPaginationResponse(
			count,
			filter.GetLimit(),
			filter.GetOffset(),
		),
	}
	for i, e := range events {
		response.Items[i] = &dto.UsageEventResponse{UsageEvent: e}
	}
	return response, nil
}
