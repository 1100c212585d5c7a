package service

import (
	"context"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService opens and closes paid billing periods against the
// upstream billing provider.
type SubscriptionService interface {
	// Subscribe puts a user onto a paid plan, provisioning the upstream
	// customer and subscription and opening the first active period.
	Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.SubscriptionPeriodResponse, error)

	// Cancel ends the user's active subscription at the upstream provider
	// and marks the local period cancelled.
	Cancel(ctx context.Context, userID string) (*dto.CancelSubscriptionResponse, error)

	// GetCurrentPeriod returns the user's active or trialing period.
	GetCurrentPeriod(ctx context.Context, userID string) (*dto.SubscriptionPeriodResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*dto.SubscriptionPeriodResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	u, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.SubRepo.GetActiveByUser(ctx, userID); err == nil && !existing.IsTrial() {
		return nil, ierr.NewError("user already has an active subscription").
			WithHint("Cancel the current subscription before subscribing to a new plan").
			WithReportableDetails(map[string]interface{}{
				"user_id":   userID,
				"period_id": existing.ID,
				"plan_id":   existing.PlanID,
			}).
			Mark(ierr.ErrAlreadyExists)
	} else if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	customerID, err := s.BillingProvider.EnsureCustomer(ctx, u.ID, u.Email, u.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	if customerID != u.StripeCustomerID {
		u.StripeCustomerID = customerID
		if err := s.UserRepo.Update(ctx, u); err != nil {
			return nil, err
		}
	}

	priceID := s.Config.Stripe.PriceIDs[p.ID]
	subscriptionID, err := s.BillingProvider.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodEnd := types.NextBillingDate(now, 1)
	period := &subscription.Period{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PERIOD),
		UserID:               userID,
		PlanID:               p.ID,
		PeriodStatus:         types.SubscriptionPeriodStatusActive,
		PeriodStart:          now,
		PeriodEnd:            periodEnd,
		StripeSubscriptionID: subscriptionID,
		NextBillingDate:      lo.ToPtr(periodEnd),
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		// a still-trialing period gets superseded by the paid one
		if trial, err := s.SubRepo.GetActiveByUser(txCtx, userID); err == nil && trial.IsTrial() {
			trial.PeriodStatus = types.SubscriptionPeriodStatusExpired
			trial.CancelledAt = lo.ToPtr(now)
			if err := s.SubRepo.Update(txCtx, trial); err != nil {
				return err
			}
		} else if err != nil && !ierr.IsNotFound(err) {
			return err
		}

		if err := s.SubRepo.Create(txCtx, period); err != nil {
			return err
		}

		u.SubscriptionTier = p.ID
		if u.TrialStatus == types.TrialStatusActive {
			u.TrialStatus = types.TrialStatusUpgraded
		}
		return s.UserRepo.Update(txCtx, u)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"user_id", userID,
		"plan_id", p.ID,
		"period_id", period.ID,
		"stripe_subscription_id", subscriptionID)

	return &dto.SubscriptionPeriodResponse{
		Period:          period,
		PlanDisplayName: p.DisplayName,
	}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*dto.CancelSubscriptionResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}

	period, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no active subscription to cancel").
				WithHint("The user has no active subscription").
				WithReportableDetails(map[string]interface{}{
					"user_id": userID,
				}).
				Mark(ierr.ErrNoActiveSubscription)
		}
		return nil, err
	}

	if period.StripeSubscriptionID != "" {
		if err := s.BillingProvider.CancelSubscription(ctx, period.StripeSubscriptionID); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to cancel the subscription with the billing provider").
				WithReportableDetails(map[string]interface{}{
					"user_id":   userID,
					"period_id": period.ID,
				}).
				Mark(ierr.ErrHTTPClient)
		}
	}

	now := time.Now().UTC()
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		period.PeriodStatus = types.SubscriptionPeriodStatusCancelled
		period.CancelledAt = lo.ToPtr(now)
		if err := s.SubRepo.Update(txCtx, period); err != nil {
			return err
		}

		u, err := s.UserRepo.Get(txCtx, userID)
		if err != nil {
			return err
		}
		u.SubscriptionTier = types.SubscriptionTierNone
		return s.UserRepo.Update(txCtx, u)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription cancelled",
		"user_id", userID,
		"period_id", period.ID)

	return &dto.CancelSubscriptionResponse{
		PeriodID:    period.ID,
		CancelledAt: now,
	}, nil
}

func (s *subscriptionService) GetCurrentPeriod(ctx context.Context, userID string) (*dto.SubscriptionPeriodResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
	}

	period, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &dto.SubscriptionPeriodResponse{Period: period}
	if p, err := s.PlanRepo.Get(ctx, period.PlanID); err == nil {
		response.PlanDisplayName = p.DisplayName
	}
	return response, nil
}
