package rest

import (
	"net/http"

	"github.com/dialhaven/dialhaven/internal/api/cron"
	v1 "github.com/dialhaven/dialhaven/internal/api/v1"
	"github.com/dialhaven/dialhaven/internal/config"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Usage        *v1.UsageHandler
	Subscription *v1.SubscriptionHandler
	Plan         *v1.PlanHandler
	BillingCron  *cron.BillingCronHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == config.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}
	// gin's own debug output goes through the structured logger
	gin.DefaultWriter = log.GetGinLogger()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/v1")
	apiV1.Use(middleware.IdentityMiddleware)
	{
		usage := apiV1.Group("/usage")
		{
			usage.POST("", handlers.Usage.TrackUsage)
			usage.GET("/limits", handlers.Usage.GetUsageLimits)
			usage.GET("/history", handlers.Usage.GetUsageHistory)
		}

		plans := apiV1.Group("/plans")
		{
			plans.GET("", handlers.Plan.ListPlans)
			plans.GET("/:id", handlers.Plan.GetPlan)
		}

		subscriptions := apiV1.Group("/subscriptions")
		{
			subscriptions.POST("", handlers.Subscription.Subscribe)
			subscriptions.GET("/current", handlers.Subscription.GetCurrent)
			subscriptions.DELETE("/current", handlers.Subscription.Cancel)
			subscriptions.GET("/current/overage", handlers.Subscription.GetCurrentOverage)
			subscriptions.POST("/trial", handlers.Subscription.StartTrial)
		}
	}

	cronGroup := router.Group("/cron")
	{
		billing := cronGroup.Group("/billing")
		{
			billing.POST("/reset-periods", handlers.BillingCron.ResetBillingPeriods)
			billing.POST("/expire-trials", handlers.BillingCron.ExpireTrials)
			billing.POST("/overage-charges", handlers.BillingCron.ProcessOverageCharges)
		}
	}

	return router
}
