package service

import (
	"context"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	"github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
)

// TrialService manages the free trial state machine: none, active, expired,
// upgraded. A user gets exactly one trial, ever.
type TrialService interface {
	// StartFreeTrial activates the one-time trial for a user and opens a
	// trialing period on the free plan.
	StartFreeTrial(ctx context.Context, userID string) (*dto.StartTrialResponse, error)

	// ExpireTrials sweeps users whose trial end has passed and downgrades
	// them. Each user is handled independently.
	ExpireTrials(ctx context.Context, asOf time.Time) (*dto.CronRunResponse, error)
}

type trialService struct {
	ServiceParams
}

func NewTrialService(params ServiceParams) TrialService {
	return &trialService{ServiceParams: params}
}

func (s *trialService) StartFreeTrial(ctx context.Context, userID string) (*dto.StartTrialResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}

	u, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.HasUsedTrial() {
		return nil, ierr.NewError("free trial already used").
			WithHint("Each account can use the free trial only once").
			WithReportableDetails(map[string]interface{}{
				"user_id":      userID,
				"trial_status": u.TrialStatus,
			}).
			Mark(ierr.ErrAlreadyUsedTrial)
	}

	now := time.Now().UTC()
	trialEndsAt := now.AddDate(0, 0, types.TrialLengthDays)
	periodEnd := now.AddDate(0, 0, types.TrialPeriodDays)

	period := &subscription.Period{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PERIOD),
		UserID:       userID,
		PlanID:       plan.FreePlanID,
		PeriodStatus: types.SubscriptionPeriodStatusTrialing,
		PeriodStart:  now,
		PeriodEnd:    periodEnd,
		TrialEndsAt:  lo.ToPtr(trialEndsAt),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.SubRepo.Create(txCtx, period); err != nil {
			return err
		}
		u.TrialStatus = types.TrialStatusActive
		u.TrialStartedAt = lo.ToPtr(now)
		u.TrialEndsAt = lo.ToPtr(trialEndsAt)
		u.SubscriptionTier = plan.FreePlanID
		return s.UserRepo.Update(txCtx, u)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("started free trial",
		"user_id", userID,
		"trial_ends_at", trialEndsAt,
		"period_id", period.ID)

	return &dto.StartTrialResponse{
		TrialEndsAt: trialEndsAt,
		Period:      &dto.SubscriptionPeriodResponse{Period: period},
	}, nil
}

func (s *trialService) ExpireTrials(ctx context.Context, asOf time.Time) (*dto.CronRunResponse, error) {
	users, err := s.UserRepo.ListExpiredTrials(ctx, asOf)
	if err != nil {
		return nil, err
	}

	response := &dto.CronRunResponse{}
	for _, u := range users {
		if err := s.expireTrial(ctx, u, asOf); err != nil {
			response.Failed++
			s.Logger.Errorw("failed to expire trial",
				"user_id", u.ID,
				"error", err)
			continue
		}
		response.Processed++
	}

	s.Logger.Infow("trial expiry sweep complete",
		"as_of", asOf,
		"processed", response.Processed,
		"failed", response.Failed)
	return response, nil
}

func (s *trialService) expireTrial(ctx context.Context, u *user.User, asOf time.Time) error {
	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		u.TrialStatus = types.TrialStatusExpired
		u.SubscriptionTier = types.SubscriptionTierNone
		if err := s.UserRepo.Update(txCtx, u); err != nil {
			return err
		}

		period, err := s.SubRepo.GetActiveByUser(txCtx, u.ID)
		if err != nil {
			// trial users without a period still get downgraded
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}
		if !period.IsTrial() {
			return nil
		}
		period.PeriodStatus = types.SubscriptionPeriodStatusExpired
		period.CancelledAt = lo.ToPtr(asOf)
		return s.SubRepo.Update(txCtx, period)
	})
}
