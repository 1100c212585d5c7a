package service

import (
	"github.com/dialhaven/dialhaven/internal/cache"
	"github.com/dialhaven/dialhaven/internal/config"
	"github.com/dialhaven/dialhaven/internal/domain/events"
	"github.com/dialhaven/dialhaven/internal/domain/plan"
	"github.com/dialhaven/dialhaven/internal/domain/subscription"
	"github.com/dialhaven/dialhaven/internal/domain/user"
	"github.com/dialhaven/dialhaven/internal/integration/stripe"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
)

// ServiceParams holds the dependencies shared by all services. Services
// embed it and are constructed once at startup.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	PlanRepo  plan.Repository
	UserRepo  user.Repository
	SubRepo   subscription.Repository
	EventRepo events.Repository

	BillingProvider stripe.BillingProvider
}

// NewServiceParams builds ServiceParams (for fx registration).
func NewServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	c cache.Cache,
	planRepo plan.Repository,
	userRepo user.Repository,
	subRepo subscription.Repository,
	eventRepo events.Repository,
	billingProvider stripe.BillingProvider,
) ServiceParams {
	return ServiceParams{
		Logger:          log,
		Config:          cfg,
		DB:              db,
		Cache:           c,
		PlanRepo:        planRepo,
		UserRepo:        userRepo,
		SubRepo:         subRepo,
		EventRepo:       eventRepo,
		BillingProvider: billingProvider,
	}
}
