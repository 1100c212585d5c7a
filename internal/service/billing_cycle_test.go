package service

import (
	"testing"
	"time"

	"github.com/dialhaven/dialhaven/internal/cache"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	"github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/testutil"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingCycleServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	billingCycleService BillingCycleService
}

func TestBillingCycleService(t *testing.T) {
	suite.Run(t, new(BillingCycleServiceTestSuite))
}

func (s *BillingCycleServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.billingCycleService = NewBillingCycleService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		Cache:           cache.NewInMemoryCache(),
		PlanRepo:        s.GetStores().PlanRepo,
		UserRepo:        s.GetStores().UserRepo,
		SubRepo:         s.GetStores().SubscriptionRepo,
		EventRepo:       s.GetStores().EventRepo,
		BillingProvider: s.GetBillingProvider(),
	})
	s.NoError(s.GetStores().PlanRepo.Seed(s.GetContext(), plan.DefaultPlans()))
}

func (s *BillingCycleServiceTestSuite) seedUser(id, customerID string) *user.User {
	u := &user.User{
		ID:               id,
		Email:            id + "@example.com",
		TrialStatus:      types.TrialStatusUpgraded,
		SubscriptionTier: "starter",
		StripeCustomerID: customerID,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().UserRepo.Create(s.GetContext(), u))
	return u
}

func (s *BillingCycleServiceTestSuite) seedPeriod(id, userID string, start, end time.Time, minutes decimal.Decimal, sms int) *subscription.Period {
	p := &subscription.Period{
		ID:           id,
		UserID:       userID,
		PlanID:       "starter",
		PeriodStatus: types.SubscriptionPeriodStatusActive,
		PeriodStart:  start,
		PeriodEnd:    end,
		MinutesUsed:  minutes,
		SMSUsed:      sms,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), p))
	return p
}

func (s *BillingCycleServiceTestSuite) TestResetElapsedPeriodsRollsCountersAndWindow() {
	ctx := s.GetContext()
	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	s.seedUser("user_1", "cus_1")
	oldEnd := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s.seedPeriod("period_1", "user_1", oldEnd.AddDate(0, -1, 0), oldEnd, decimal.NewFromInt(250), 40)

	resp, err := s.billingCycleService.ResetElapsedPeriods(ctx, asOf)
	s.NoError(err)
	s.Equal(1, resp.Processed)
	s.Equal(0, resp.Failed)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, "period_1")
	s.NoError(err)
	s.True(period.MinutesUsed.IsZero())
	s.Equal(0, period.SMSUsed)
	// new cycle starts exactly where the old one ended
	s.True(period.PeriodStart.Equal(oldEnd))
	s.True(period.PeriodEnd.Equal(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)))
	s.NotNil(period.NextBillingDate)
	s.True(period.NextBillingDate.Equal(period.PeriodEnd))
}

func (s *BillingCycleServiceTestSuite) TestResetElapsedPeriodsIsIdempotent() {
	ctx := s.GetContext()
	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	s.seedUser("user_1", "cus_1")
	oldEnd := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s.seedPeriod("period_1", "user_1", oldEnd.AddDate(0, -1, 0), oldEnd, decimal.NewFromInt(250), 40)

	first, err := s.billingCycleService.ResetElapsedPeriods(ctx, asOf)
	s.NoError(err)
	s.Equal(1, first.Processed)

	second, err := s.billingCycleService.ResetElapsedPeriods(ctx, asOf)
	s.NoError(err)
	s.Equal(0, second.Processed)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, "period_1")
	s.NoError(err)
	s.True(period.PeriodEnd.Equal(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingCycleServiceTestSuite) TestResetElapsedPeriodsSkipsUnexpired() {
	ctx := s.GetContext()
	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	s.seedUser("user_1", "cus_1")
	s.seedPeriod("period_future", "user_1",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10), 0)

	resp, err := s.billingCycleService.ResetElapsedPeriods(ctx, asOf)
	s.NoError(err)
	s.Equal(0, resp.Processed)
	s.Equal(0, resp.Failed)
}

func (s *BillingCycleServiceTestSuite) TestResetClampsMonthEndDates() {
	ctx := s.GetContext()

	s.seedUser("user_1", "cus_1")
	// period ending Jan 31 rolls into a cycle ending Feb 28
	oldEnd := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	s.seedPeriod("period_jan", "user_1", oldEnd.AddDate(0, -1, 0), oldEnd, decimal.NewFromInt(5), 0)

	asOf := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	resp, err := s.billingCycleService.ResetElapsedPeriods(ctx, asOf)
	s.NoError(err)
	s.Equal(1, resp.Processed)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, "period_jan")
	s.NoError(err)
	s.True(period.PeriodEnd.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
}

func (s *BillingCycleServiceTestSuite) TestComputeOverageMinutesOnly() {
	plans, err := s.GetStores().PlanRepo.Get(s.GetContext(), "starter")
	s.NoError(err)

	period := &subscription.Period{
		ID:          "period_1",
		MinutesUsed: decimal.NewFromInt(310),
		SMSUsed:     100,
	}

	charge := s.billingCycleService.ComputeOverage(period, plans)
	s.True(charge.MinutesOverage.Equal(decimal.NewFromInt(10)))
	s.Equal(0, charge.SMSOverage)
	// 10 minutes at 0.02
	s.True(charge.TotalCharge.Equal(decimal.NewFromFloat(0.20)))
}

func (s *BillingCycleServiceTestSuite) TestComputeOverageBothDimensions() {
	plans, err := s.GetStores().PlanRepo.Get(s.GetContext(), "starter")
	s.NoError(err)

	period := &subscription.Period{
		ID:          "period_1",
		MinutesUsed: decimal.NewFromInt(400),
		SMSUsed:     600,
	}

	charge := s.billingCycleService.ComputeOverage(period, plans)
	s.True(charge.MinutesOverage.Equal(decimal.NewFromInt(100)))
	s.Equal(100, charge.SMSOverage)
	s.True(charge.MinutesCharge.Equal(decimal.NewFromInt(2)))
	s.True(charge.SMSCharge.Equal(decimal.NewFromFloat(0.8)))
	s.True(charge.TotalCharge.Equal(decimal.NewFromFloat(2.8)))
}

func (s *BillingCycleServiceTestSuite) TestComputeOverageWithinAllowanceIsZero() {
	plans, err := s.GetStores().PlanRepo.Get(s.GetContext(), "starter")
	s.NoError(err)

	period := &subscription.Period{
		ID:          "period_1",
		MinutesUsed: decimal.NewFromInt(299),
		SMSUsed:     500,
	}

	charge := s.billingCycleService.ComputeOverage(period, plans)
	s.True(charge.TotalCharge.IsZero())
}

func (s *BillingCycleServiceTestSuite) TestGetCurrentOverageForActivePeriod() {
	ctx := s.GetContext()
	now := time.Now().UTC()
	u := s.seedUser("user_1", "cus_1")
	s.seedPeriod("period_1", u.ID, now.AddDate(0, 0, -10), now.AddDate(0, 0, 20),
		decimal.NewFromInt(310), 100)

	resp, err := s.billingCycleService.GetCurrentOverage(ctx, u.ID)
	s.NoError(err)
	s.Equal("period_1", resp.PeriodID)
	s.True(resp.MinutesOverage.Equal(decimal.NewFromInt(10)))
	s.Equal(0, resp.SMSOverage)
	s.True(resp.TotalCharge.Equal(decimal.NewFromFloat(0.20)))
}

func (s *BillingCycleServiceTestSuite) TestGetCurrentOverageWithoutSubscription() {
	u := s.seedUser("user_1", "cus_1")

	_, err := s.billingCycleService.GetCurrentOverage(s.GetContext(), u.ID)
	s.Error(err)
	s.True(ierr.IsNoActiveSubscription(err))
}

func (s *BillingCycleServiceTestSuite) TestProcessOverageChargesCreatesInvoiceItem() {
	ctx := s.GetContext()
	now := time.Now().UTC()

	s.seedUser("user_1", "cus_1")
	s.seedPeriod("period_1", "user_1", now.AddDate(0, -1, 0), now.AddDate(0, 0, 5), decimal.NewFromInt(310), 0)

	resp, err := s.billingCycleService.ProcessOverageCharges(ctx)
	s.NoError(err)
	s.Equal(1, resp.Processed)

	items := s.GetBillingProvider().InvoiceItems
	s.Len(items, 1)
	s.Equal("cus_1", items[0].CustomerID)
	s.True(items[0].Amount.Equal(decimal.NewFromFloat(0.20)))
	s.Equal("Usage overage: 10 minutes, 0 SMS", items[0].Description)
}

func (s *BillingCycleServiceTestSuite) TestProcessOverageChargesSkipsZeroOverage() {
	ctx := s.GetContext()
	now := time.Now().UTC()

	s.seedUser("user_1", "cus_1")
	s.seedPeriod("period_1", "user_1", now.AddDate(0, -1, 0), now.AddDate(0, 0, 5), decimal.NewFromInt(100), 10)

	resp, err := s.billingCycleService.ProcessOverageCharges(ctx)
	s.NoError(err)
	s.Equal(0, resp.Processed)
	s.Equal(1, resp.Skipped)
	s.Empty(s.GetBillingProvider().InvoiceItems)
}

func (s *BillingCycleServiceTestSuite) TestProcessOverageChargesSkipsUsersWithoutCustomer() {
	ctx := s.GetContext()
	now := time.Now().UTC()

	s.seedUser("user_1", "")
	s.seedPeriod("period_1", "user_1", now.AddDate(0, -1, 0), now.AddDate(0, 0, 5), decimal.NewFromInt(310), 0)

	resp, err := s.billingCycleService.ProcessOverageCharges(ctx)
	s.NoError(err)
	s.Equal(0, resp.Processed)
	s.Equal(1, resp.Skipped)
	s.Empty(s.GetBillingProvider().InvoiceItems)
}

func (s *BillingCycleServiceTestSuite) TestProcessOverageChargesContinuesAfterFailure() {
	ctx := s.GetContext()
	now := time.Now().UTC()

	s.seedUser("user_1", "cus_1")
	s.seedPeriod("period_1", "user_1", now.AddDate(0, -1, 0), now.AddDate(0, 0, 5), decimal.NewFromInt(310), 0)
	s.seedUser("user_2", "cus_2")
	s.seedPeriod("period_2", "user_2", now.AddDate(0, -1, 0), now.AddDate(0, 0, 5), decimal.NewFromInt(320), 0)

	s.GetBillingProvider().FailNext = ierr.NewError("upstream unavailable").Mark(ierr.ErrHTTPClient)

	resp, err := s.billingCycleService.ProcessOverageCharges(ctx)
	s.NoError(err)
	s.Equal(1, resp.Processed)
	s.Equal(1, resp.Failed)
}
