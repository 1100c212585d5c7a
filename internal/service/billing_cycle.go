package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// BillingCycleService rolls elapsed periods into their next cycle and settles
// overage against the plan's per-unit rates.
type BillingCycleService interface {
	// ResetElapsedPeriods advances every active period whose end is at or
	// before asOf into its next cycle. Each period is handled independently;
	// one failure never aborts the batch.
	ResetElapsedPeriods(ctx context.Context, asOf time.Time) (*dto.CronRunResponse, error)

	// ComputeOverage derives the charge a period owes beyond its plan's
	// included allowance. Zero overage yields a zero total, never an error.
	ComputeOverage(period *subscription.Period, p *plan.Plan) *subscription.OverageCharge

	// ProcessOverageCharges sweeps active periods and emits an invoice item
	// for each one with a positive overage total.
	ProcessOverageCharges(ctx context.Context) (*dto.CronRunResponse, error)

	// GetCurrentOverage reports the overage the user's active period has
	// accrued so far against its plan.
	GetCurrentOverage(ctx context.Context, userID string) (*dto.OverageChargeResponse, error)
}

type billingCycleService struct {
	ServiceParams
}

func NewBillingCycleService(params ServiceParams) BillingCycleService {
	return &billingCycleService{ServiceParams: params}
}

func (s *billingCycleService) ResetElapsedPeriods(ctx context.Context, asOf time.Time) (*dto.CronRunResponse, error) {
	periods, err := s.SubRepo.ListElapsed(ctx, asOf)
	if err != nil {
		return nil, err
	}

	response := &dto.CronRunResponse{}
	for _, period := range periods {
		rolled, err := s.rolloverPeriod(ctx, period, asOf)
		switch {
		case err != nil:
			response.Failed++
			s.Logger.Errorw("failed to roll over billing period",
				"period_id", period.ID,
				"user_id", period.UserID,
				"error", err)
		case rolled:
			response.Processed++
		default:
			// lost the race to a concurrent run
			response.Skipped++
		}
	}

	s.Logger.Infow("billing period reset complete",
		"as_of", asOf,
		"processed", response.Processed,
		"skipped", response.Skipped,
		"failed", response.Failed)
	return response, nil
}

// rolloverPeriod advances a single period under an advisory lock. The new
// cycle starts exactly where the old one ended so no usage falls between
// periods.
func (s *billingCycleService) rolloverPeriod(ctx context.Context, period *subscription.Period, asOf time.Time) (bool, error) {
	newStart := period.PeriodEnd
	newEnd := types.NextBillingDate(newStart, 1)

	rolled := false
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		lockKey := types.GenerateLockKey(types.LockScopeBillingPeriod, map[string]interface{}{
			"period_id": period.ID,
		})
		acquired, err := s.DB.TryLockKey(txCtx, lockKey)
		if err != nil {
			return err
		}
		if !acquired {
			return nil
		}

		rolled, err = s.SubRepo.Rollover(txCtx, period.ID, asOf, newStart, newEnd)
		return err
	})
	return rolled, err
}

func (s *billingCycleService) ComputeOverage(period *subscription.Period, p *plan.Plan) *subscription.OverageCharge {
	charge := &subscription.OverageCharge{
		PeriodID:       period.ID,
		MinutesOverage: decimal.Zero,
		MinutesCharge:  decimal.Zero,
		SMSCharge:      decimal.Zero,
		TotalCharge:    decimal.Zero,
	}

	includedMinutes := decimal.NewFromInt(int64(p.IncludedMinutes))
	if period.MinutesUsed.GreaterThan(includedMinutes) {
		charge.MinutesOverage = period.MinutesUsed.Sub(includedMinutes)
		charge.MinutesCharge = charge.MinutesOverage.Mul(p.PricePerExtraMinute)
	}

	if period.SMSUsed > p.IncludedSMS {
		charge.SMSOverage = period.SMSUsed - p.IncludedSMS
		charge.SMSCharge = decimal.NewFromInt(int64(charge.SMSOverage)).Mul(p.PricePerExtraSMS)
	}

	charge.TotalCharge = charge.MinutesCharge.Add(charge.SMSCharge)
	return charge
}

func (s *billingCycleService) GetCurrentOverage(ctx context.Context, userID string) (*dto.OverageChargeResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user ID is required").
			Mark(ierr.ErrValidation)
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

	p, err := s.PlanRepo.Get(ctx, period.PlanID)
	if err != nil {
		return nil, err
	}

	return dto.NewOverageChargeResponse(s.ComputeOverage(period, p)), nil
}

func (s *billingCycleService) ProcessOverageCharges(ctx context.Context) (*dto.CronRunResponse, error) {
	periods, err := s.SubRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	response := &dto.CronRunResponse{}
	for _, period := range periods {
		charged, err := s.chargePeriodOverage(ctx, period)
		switch {
		case err != nil:
			response.Failed++
			s.Logger.Errorw("failed to charge overage",
				"period_id", period.ID,
				"user_id", period.UserID,
				"error", err)
		case charged:
			response.Processed++
		default:
			response.Skipped++
		}
	}

	s.Logger.Infow("overage sweep complete",
		"processed", response.Processed,
		"skipped", response.Skipped,
		"failed", response.Failed)
	return response, nil
}

func (s *billingCycleService) chargePeriodOverage(ctx context.Context, period *subscription.Period) (bool, error) {
	p, err := s.PlanRepo.Get(ctx, period.PlanID)
	if err != nil {
		return false, err
	}

	charge := s.ComputeOverage(period, p)
	if charge.TotalCharge.IsZero() {
		return false, nil
	}

	u, err := s.UserRepo.Get(ctx, period.UserID)
	if err != nil {
		return false, err
	}
	if u.StripeCustomerID == "" {
		s.Logger.Warnw("overage owed but user has no billing customer",
			"user_id", u.ID,
			"period_id", period.ID,
			"total_charge", charge.TotalCharge.String())
		return false, nil
	}

	description := fmt.Sprintf("Usage overage: %s minutes, %d SMS",
		charge.MinutesOverage.String(), charge.SMSOverage)
	if err := s.BillingProvider.CreateInvoiceItem(ctx, u.StripeCustomerID, charge.TotalCharge, p.Currency, description); err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to create overage invoice item").
			WithReportableDetails(map[string]interface{}{
				"period_id": period.ID,
				"user_id":   u.ID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.Logger.Infow("charged usage overage",
		"user_id", u.ID,
		"period_id", period.ID,
		"minutes_overage", charge.MinutesOverage.String(),
		"sms_overage", charge.SMSOverage,
		"total_charge", charge.TotalCharge.String())
	return true, nil
}
