package service

import (
	"testing"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/dto"
	"github.com/dialhaven/dialhaven/internal/cache"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	"github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/testutil"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MeteringServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	meteringService MeteringService
	testData        struct {
		user   *user.User
		period *subscription.Period
	}
}

func TestMeteringService(t *testing.T) {
	suite.Run(t, new(MeteringServiceTestSuite))
}

func (s *MeteringServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *MeteringServiceTestSuite) setupService() {
	s.meteringService = NewMeteringService(ServiceParams{
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
}

func (s *MeteringServiceTestSuite) setupTestData() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().PlanRepo.Seed(ctx, plan.DefaultPlans()))

	now := time.Now().UTC()
	s.testData.user = &user.User{
		ID:               "user_1",
		Email:            "test@example.com",
		TrialStatus:      types.TrialStatusUpgraded,
		SubscriptionTier: "starter",
		StripeCustomerID: "cus_1",
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserRepo.Create(ctx, s.testData.user))

	s.testData.period = &subscription.Period{
		ID:           "period_1",
		UserID:       s.testData.user.ID,
		PlanID:       "starter",
		PeriodStatus: types.SubscriptionPeriodStatusActive,
		PeriodStart:  now.AddDate(0, 0, -10),
		PeriodEnd:    now.AddDate(0, 0, 20),
		MinutesUsed:  decimal.Zero,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, s.testData.period))
}

func (s *MeteringServiceTestSuite) TestRecordUsageIncrementsCounters() {
	ctx := s.GetContext()

	resp, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromFloat(2.5),
	})
	s.NoError(err)
	s.NotNil(resp)
	s.Equal(s.testData.period.ID, resp.PeriodID)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, s.testData.period.ID)
	s.NoError(err)
	s.True(period.MinutesUsed.Equal(decimal.NewFromFloat(2.5)))
	s.Equal(0, period.SMSUsed)
}

func (s *MeteringServiceTestSuite) TestRecordUsageCounterMatchesLedgerSum() {
	ctx := s.GetContext()

	quantities := []float64{1, 2.5, 0.5, 3}
	for _, q := range quantities {
		_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
			Type:     types.UsageTypeCallMinute,
			Quantity: decimal.NewFromFloat(q),
		})
		s.NoError(err)
	}

	sum, err := s.GetStores().EventRepo.SumQuantityByPeriod(ctx, s.testData.period.ID, types.UsageTypeCallMinute)
	s.NoError(err)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, s.testData.period.ID)
	s.NoError(err)
	s.True(period.MinutesUsed.Equal(sum), "counter %s should equal ledger sum %s", period.MinutesUsed, sum)
}

func (s *MeteringServiceTestSuite) TestRecordUsageSMSRoundsToWholeMessages() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeSMS,
		Quantity: decimal.NewFromFloat(2.6),
	})
	s.NoError(err)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, s.testData.period.ID)
	s.NoError(err)
	s.Equal(3, period.SMSUsed)
	s.True(period.MinutesUsed.IsZero())
}

func (s *MeteringServiceTestSuite) TestRecordUsageZeroQuantityStillWritesLedgerRow() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.Zero,
	})
	s.NoError(err)

	count, err := s.GetStores().EventRepo.Count(ctx, &types.UsageEventFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		UserID:      s.testData.user.ID,
	})
	s.NoError(err)
	s.Equal(1, count)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, s.testData.period.ID)
	s.NoError(err)
	s.True(period.MinutesUsed.IsZero())
}

func (s *MeteringServiceTestSuite) TestRecordUsageOverAllowanceIsNotBlocked() {
	ctx := s.GetContext()

	// starter includes 300 minutes
	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(500),
	})
	s.NoError(err)

	period, err := s.GetStores().SubscriptionRepo.Get(ctx, s.testData.period.ID)
	s.NoError(err)
	s.True(period.MinutesUsed.Equal(decimal.NewFromInt(500)))
}

func (s *MeteringServiceTestSuite) TestRecordUsageWithoutSubscriptionLeavesNoLedgerRow() {
	ctx := s.GetContext()

	noSub := &user.User{
		ID:               "user_nosub",
		Email:            "nosub@example.com",
		TrialStatus:      types.TrialStatusNone,
		SubscriptionTier: types.SubscriptionTierNone,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserRepo.Create(ctx, noSub))

	_, err := s.meteringService.RecordUsage(ctx, noSub.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(1),
	})
	s.Error(err)
	s.True(ierr.IsNoActiveSubscription(err))

	count, err := s.GetStores().EventRepo.Count(ctx, &types.UsageEventFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		UserID:      noSub.ID,
	})
	s.NoError(err)
	s.Equal(0, count)
}

func (s *MeteringServiceTestSuite) TestRecordUsageRejectsInvalidInput() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     "fax",
		Quantity: decimal.NewFromInt(1),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(-1),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *MeteringServiceTestSuite) TestGetUsageLimitsPaidPlan() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(120),
	})
	s.NoError(err)

	limits, err := s.meteringService.GetUsageLimits(ctx, s.testData.user.ID)
	s.NoError(err)
	s.True(limits.HasSubscription)
	s.False(limits.IsTrial)
	s.Equal("Starter", limits.Plan)
	s.Equal(300, *limits.MinutesIncluded)
	s.True(limits.MinutesRemaining.Equal(decimal.NewFromInt(180)))
}

func (s *MeteringServiceTestSuite) TestGetUsageLimitsClampsRemainingAtZero() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(450),
	})
	s.NoError(err)

	limits, err := s.meteringService.GetUsageLimits(ctx, s.testData.user.ID)
	s.NoError(err)
	s.True(limits.MinutesRemaining.IsZero())
}

func (s *MeteringServiceTestSuite) TestGetUsageLimitsTrialShape() {
	ctx := s.GetContext()

	now := time.Now().UTC()
	trialUser := &user.User{
		ID:             "user_trial",
		Email:          "trial@example.com",
		TrialStatus:    types.TrialStatusActive,
		TrialStartedAt: lo.ToPtr(now.AddDate(0, 0, -2)),
		TrialEndsAt:    lo.ToPtr(now.AddDate(0, 0, 5)),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserRepo.Create(ctx, trialUser))

	trialPeriod := &subscription.Period{
		ID:           "period_trial",
		UserID:       trialUser.ID,
		PlanID:       plan.FreePlanID,
		PeriodStatus: types.SubscriptionPeriodStatusTrialing,
		PeriodStart:  now.AddDate(0, 0, -2),
		PeriodEnd:    now.AddDate(0, 0, 28),
		TrialEndsAt:  trialUser.TrialEndsAt,
		MinutesUsed:  decimal.NewFromInt(10),
		SMSUsed:      5,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, trialPeriod))

	limits, err := s.meteringService.GetUsageLimits(ctx, trialUser.ID)
	s.NoError(err)
	s.True(limits.HasSubscription)
	s.True(limits.IsTrial)
	s.Equal(50, *limits.MinutesIncluded)
	s.True(limits.MinutesRemaining.Equal(decimal.NewFromInt(40)))
	s.Equal(45, *limits.SMSRemaining)
	s.Equal(5, *limits.DaysRemaining)
}

func (s *MeteringServiceTestSuite) TestGetUsageLimitsNoSubscription() {
	ctx := s.GetContext()

	noSub := &user.User{
		ID:               "user_none",
		Email:            "none@example.com",
		TrialStatus:      types.TrialStatusExpired,
		SubscriptionTier: types.SubscriptionTierNone,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserRepo.Create(ctx, noSub))

	limits, err := s.meteringService.GetUsageLimits(ctx, noSub.ID)
	s.NoError(err)
	s.False(limits.HasSubscription)
	s.Nil(limits.MinutesRemaining)
}

func (s *MeteringServiceTestSuite) TestGetUsageHistoryNewestFirst() {
	ctx := s.GetContext()

	base := time.Now().UTC().Add(-1 * time.Hour)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
			Type:      types.UsageTypeCallMinute,
			Quantity:  decimal.NewFromInt(1),
			Timestamp: &ts,
		})
		s.NoError(err)
	}

	resp, err := s.meteringService.GetUsageHistory(ctx, s.testData.user.ID, nil)
	s.NoError(err)
	s.Len(resp.Items, 3)
	s.Equal(3, resp.Pagination.Total)
	s.True(resp.Items[0].Timestamp.After(resp.Items[1].Timestamp))
	s.True(resp.Items[1].Timestamp.After(resp.Items[2].Timestamp))
}

func (s *MeteringServiceTestSuite) TestGetUsageHistoryFiltersByType() {
	ctx := s.GetContext()

	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(1),
	})
	s.NoError(err)
	_, err = s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeSMS,
		Quantity: decimal.NewFromInt(2),
	})
	s.NoError(err)

	filter := types.NewUsageEventFilter()
	filter.Type = types.UsageTypeSMS
	resp, err := s.meteringService.GetUsageHistory(ctx, s.testData.user.ID, filter)
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal(types.UsageTypeSMS, resp.Items[0].Type)
}

func (s *MeteringServiceTestSuite) TestGetUsageHistoryRejectsOutOfRangeLimits() {
	ctx := s.GetContext()

	filter := types.NewUsageEventFilter()
	filter.Limit = lo.ToPtr(-5)
	_, err := s.meteringService.GetUsageHistory(ctx, s.testData.user.ID, filter)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	filter = types.NewUsageEventFilter()
	filter.Limit = lo.ToPtr(types.FilterMaxLimit + 1)
	_, err = s.meteringService.GetUsageHistory(ctx, s.testData.user.ID, filter)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *MeteringServiceTestSuite) TestOverAllowanceOnlyAboveIncluded() {
	ctx := s.GetContext()

	// starter includes 300 minutes; landing exactly on it is not an overage
	_, err := s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromInt(300),
	})
	s.NoError(err)

	limits, err := s.meteringService.GetUsageLimits(ctx, s.testData.user.ID)
	s.NoError(err)
	minutesOver, smsOver := overAllowance(limits)
	s.False(minutesOver)
	s.False(smsOver)

	_, err = s.meteringService.RecordUsage(ctx, s.testData.user.ID, &dto.TrackUsageRequest{
		Type:     types.UsageTypeCallMinute,
		Quantity: decimal.NewFromFloat(0.5),
	})
	s.NoError(err)

	limits, err = s.meteringService.GetUsageLimits(ctx, s.testData.user.ID)
	s.NoError(err)
	minutesOver, smsOver = overAllowance(limits)
	s.True(minutesOver)
	s.False(smsOver)
}
