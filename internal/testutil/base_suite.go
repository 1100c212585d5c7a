package testutil

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/config"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores aggregates every in-memory repository a service test needs.
type Stores struct {
	PlanRepo         *InMemoryPlanStore
	UserRepo         *InMemoryUserStore
	SubscriptionRepo *InMemorySubscriptionStore
	EventRepo        *InMemoryEventStore
}

// BaseServiceTestSuite wires logger, config, mock DB and fresh stores for
// every test. Service suites embed it and build their ServiceParams from the
// getters.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     *config.Configuration
	log     *logger.Logger
	db      postgres.IClient
	stores  Stores
	billing *MockBillingProvider
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetTenantID(context.Background(), types.DefaultTenantID)
	s.ctx = types.SetUserID(s.ctx, "user_test")

	s.cfg = config.GetDefaultConfig()
	s.log = logger.GetLogger()
	s.db = NewMockPostgresClient()
	s.billing = NewMockBillingProvider()
	s.stores = Stores{
		PlanRepo:         NewInMemoryPlanStore(),
		UserRepo:         NewInMemoryUserStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		EventRepo:        NewInMemoryEventStore(),
	}
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.log
}

func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetBillingProvider() *MockBillingProvider {
	return s.billing
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.PlanRepo.Clear()
	s.stores.UserRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
	s.stores.EventRepo.Clear()
}
