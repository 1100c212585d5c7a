package main

import (
	"context"
	"net/http"
	"time"

	"github.com/dialhaven/dialhaven/internal/api/cron"
	v1 "github.com/dialhaven/dialhaven/internal/api/v1"
	"github.com/dialhaven/dialhaven/internal/cache"
	"github.com/dialhaven/dialhaven/internal/config"
	"github.com/dialhaven/dialhaven/internal/integration/stripe"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	repo "github.com/dialhaven/dialhaven/internal/repository/postgres"
	"github.com/dialhaven/dialhaven/internal/rest"
	"github.com/dialhaven/dialhaven/internal/service"
	"github.com/gin-gonic/gin"
	robfigcron "github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newPostgresClient,
			cache.Initialize,
			newBillingProvider,
			repo.NewPlanRepository,
			repo.NewUserRepository,
			repo.NewSubscriptionRepository,
			repo.NewUsageEventRepository,
			service.NewServiceParams,
			service.NewPlanService,
			service.NewMeteringService,
			service.NewTrialService,
			service.NewSubscriptionService,
			service.NewBillingCycleService,
			v1.NewUsageHandler,
			v1.NewSubscriptionHandler,
			v1.NewPlanHandler,
			cron.NewBillingCronHandler,
			newHandlers,
			rest.NewRouter,
		),
		fx.Invoke(startServer, startScheduler),
	)

	app.Run()
}

func newPostgresClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (postgres.IClient, error) {
	client, err := postgres.NewClient(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func newBillingProvider(cfg *config.Configuration, log *logger.Logger) (stripe.BillingProvider, error) {
	if cfg.Stripe.Enabled {
		return stripe.NewClient(cfg, log)
	}
	log.Warnw("stripe disabled, billing operations will be no-ops")
	return stripe.NewNoopProvider(log), nil
}

func newHandlers(
	usage *v1.UsageHandler,
	subscription *v1.SubscriptionHandler,
	plan *v1.PlanHandler,
	billingCron *cron.BillingCronHandler,
) rest.Handlers {
	return rest.Handlers{
		Usage:        usage,
		Subscription: subscription,
		Plan:         plan,
		BillingCron:  billingCron,
	}
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "addr", server.Addr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

// startScheduler runs the billing batch jobs in process. Deployments that
// drive them through the /cron endpoints instead disable it in config.
func startScheduler(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	log *logger.Logger,
	billingCycleService service.BillingCycleService,
	trialService service.TrialService,
) error {
	if !cfg.Billing.RunScheduler {
		log.Infow("in-process billing scheduler disabled")
		return nil
	}

	c := robfigcron.New(robfigcron.WithLocation(time.UTC))

	// elapsed periods roll over on the first of every month
	if _, err := c.AddFunc("0 0 1 * *", func() {
		ctx := context.Background()
		if _, err := billingCycleService.ResetElapsedPeriods(ctx, time.Now().UTC()); err != nil {
			log.Errorw("scheduled billing period reset failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc("0 2 * * *", func() {
		ctx := context.Background()
		if _, err := trialService.ExpireTrials(ctx, time.Now().UTC()); err != nil {
			log.Errorw("scheduled trial expiry failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc("0 3 * * *", func() {
		ctx := context.Background()
		if _, err := billingCycleService.ProcessOverageCharges(ctx); err != nil {
			log.Errorw("scheduled overage sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.Start()
			log.Infow("in-process billing scheduler started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
