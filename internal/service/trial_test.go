package service

import (
	"testing"
	"time"

	"github.com/dialhaven/dialhaven/internal/cache"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/testutil"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type TrialServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	trialService TrialService
}

func TestTrialService(t *testing.T) {
	suite.Run(t, new(TrialServiceTestSuite))
}

func (s *TrialServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.trialService = NewTrialService(ServiceParams{
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

func (s *TrialServiceTestSuite) seedFreshUser(id string) *user.User {
	u := &user.User{
		ID:               id,
		Email:            id + "@example.com",
		TrialStatus:      types.TrialStatusNone,
		SubscriptionTier: types.SubscriptionTierNone,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().UserRepo.Create(s.GetContext(), u))
	return u
}

func (s *TrialServiceTestSuite) TestStartFreeTrial() {
	ctx := s.GetContext()
	s.seedFreshUser("user_1")

	before := time.Now().UTC()
	resp, err := s.trialService.StartFreeTrial(ctx, "user_1")
	s.NoError(err)
	s.NotNil(resp)

	// trial window is exactly seven days
	expectedEnd := before.AddDate(0, 0, types.TrialLengthDays)
	s.WithinDuration(expectedEnd, resp.TrialEndsAt, 5*time.Second)

	u, err := s.GetStores().UserRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal(types.TrialStatusActive, u.TrialStatus)
	s.Equal(plan.FreePlanID, u.SubscriptionTier)
	s.NotNil(u.TrialStartedAt)
	s.NotNil(u.TrialEndsAt)

	period, err := s.GetStores().SubscriptionRepo.GetActiveByUser(ctx, "user_1")
	s.NoError(err)
	s.Equal(types.SubscriptionPeriodStatusTrialing, period.PeriodStatus)
	s.Equal(plan.FreePlanID, period.PlanID)
	s.True(period.MinutesUsed.IsZero())
	// the trialing period spans the full billing month, not just the trial
	expectedPeriodEnd := before.AddDate(0, 0, types.TrialPeriodDays)
	s.WithinDuration(expectedPeriodEnd, period.PeriodEnd, 5*time.Second)
}

func (s *TrialServiceTestSuite) TestStartFreeTrialOnlyOnce() {
	ctx := s.GetContext()
	s.seedFreshUser("user_1")

	_, err := s.trialService.StartFreeTrial(ctx, "user_1")
	s.NoError(err)

	_, err = s.trialService.StartFreeTrial(ctx, "user_1")
	s.Error(err)
	s.True(ierr.IsAlreadyUsedTrial(err))
}

func (s *TrialServiceTestSuite) TestStartFreeTrialRejectedAfterExpiry() {
	ctx := s.GetContext()
	u := s.seedFreshUser("user_1")
	u.TrialStatus = types.TrialStatusExpired
	s.NoError(s.GetStores().UserRepo.Update(ctx, u))

	_, err := s.trialService.StartFreeTrial(ctx, "user_1")
	s.Error(err)
	s.True(ierr.IsAlreadyUsedTrial(err))
}

func (s *TrialServiceTestSuite) TestStartFreeTrialUnknownUser() {
	_, err := s.trialService.StartFreeTrial(s.GetContext(), "user_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TrialServiceTestSuite) TestExpireTrialsDowngradesUserAndPeriod() {
	ctx := s.GetContext()
	s.seedFreshUser("user_1")

	_, err := s.trialService.StartFreeTrial(ctx, "user_1")
	s.NoError(err)

	// sweep after the trial window has passed
	asOf := time.Now().UTC().AddDate(0, 0, types.TrialLengthDays+1)
	resp, err := s.trialService.ExpireTrials(ctx, asOf)
	s.NoError(err)
	s.Equal(1, resp.Processed)
	s.Equal(0, resp.Failed)

	u, err := s.GetStores().UserRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal(types.TrialStatusExpired, u.TrialStatus)
	s.Equal(types.SubscriptionTierNone, u.SubscriptionTier)

	_, err = s.GetStores().SubscriptionRepo.GetActiveByUser(ctx, "user_1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TrialServiceTestSuite) TestExpireTrialsBoundaryIsInclusive() {
	ctx := s.GetContext()
	u := s.seedFreshUser("user_1")

	endsAt := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	u.TrialStatus = types.TrialStatusActive
	u.TrialEndsAt = lo.ToPtr(endsAt)
	s.NoError(s.GetStores().UserRepo.Update(ctx, u))

	// asOf exactly equal to the trial end still expires it
	resp, err := s.trialService.ExpireTrials(ctx, endsAt)
	s.NoError(err)
	s.Equal(1, resp.Processed)

	updated, err := s.GetStores().UserRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal(types.TrialStatusExpired, updated.TrialStatus)
}

func (s *TrialServiceTestSuite) TestExpireTrialsLeavesActiveTrialsAlone() {
	ctx := s.GetContext()
	s.seedFreshUser("user_1")

	_, err := s.trialService.StartFreeTrial(ctx, "user_1")
	s.NoError(err)

	resp, err := s.trialService.ExpireTrials(ctx, time.Now().UTC())
	s.NoError(err)
	s.Equal(0, resp.Processed)

	u, err := s.GetStores().UserRepo.Get(ctx, "user_1")
	s.NoError(err)
	s.Equal(types.TrialStatusActive, u.TrialStatus)
}

func (s *TrialServiceTestSuite) TestExpireTrialsSkipsUpgradedUsers() {
	ctx := s.GetContext()
	u := s.seedFreshUser("user_1")

	u.TrialStatus = types.TrialStatusUpgraded
	u.TrialEndsAt = lo.ToPtr(time.Now().UTC().AddDate(0, 0, -1))
	s.NoError(s.GetStores().UserRepo.Update(ctx, u))

	resp, err := s.trialService.ExpireTrials(ctx, time.Now().UTC())
	s.NoError(err)
	s.Equal(0, resp.Processed)
}
