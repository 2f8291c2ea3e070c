package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"monetization-backend/internal/shared/middleware"
	"monetization-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	// Ops
	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Live updates, token qua header hoặc ?token=
	router.GET("/ws", c.RealtimeHandler.ServeWS)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		setupAmbassadorRoutes(v1, c)
		setupSubscriptionRoutes(v1, c)
		setupWithdrawalRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AMBASSADOR ROUTES
// ========================================
func setupAmbassadorRoutes(v1 *gin.RouterGroup, c *container.Container) {
	amb := v1.Group("/ambassador")
	{
		amb.POST("/payment", c.AmbassadorHandler.SubmitPayment)
		amb.POST("/social", c.AmbassadorHandler.SubmitSocial)
		amb.POST("/identity", c.AmbassadorHandler.SubmitIdentity)
		amb.GET("/me", c.AmbassadorHandler.Me)
		amb.GET("/promo-code", c.AmbassadorHandler.PromoCode)
	}
}

// ========================================
// SUBSCRIPTION ROUTES
// ========================================
func setupSubscriptionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	subs := v1.Group("/subscriptions")
	{
		subs.POST("", c.SubscriptionHandler.Submit)
		subs.GET("/me", c.SubscriptionHandler.GetMine)
	}
}

// ========================================
// WITHDRAWAL ROUTES
// ========================================
func setupWithdrawalRoutes(v1 *gin.RouterGroup, c *container.Container) {
	wd := v1.Group("/withdrawals")
	{
		wd.POST("", c.WithdrawalHandler.Request)
		wd.GET("", c.WithdrawalHandler.ListMine)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
// Services vẫn tự kiểm tra role; middleware chỉ chặn sớm
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminMiddleware())

	ambassadors := admin.Group("/ambassadors")
	{
		ambassadors.GET("/pending", c.AmbassadorHandler.ListPending)
		ambassadors.GET("/:userId", c.AmbassadorHandler.Get)
		ambassadors.POST("/:userId/payment/approve", c.AmbassadorHandler.ApprovePayment)
		ambassadors.POST("/:userId/social/approve", c.AmbassadorHandler.ApproveSocial)
		ambassadors.POST("/:userId/social/:platform/approve", c.AmbassadorHandler.ApproveSocialPlatform)
		ambassadors.POST("/:userId/social/:platform/reject", c.AmbassadorHandler.RejectSocialPlatform)
		ambassadors.POST("/:userId/identity/approve", c.AmbassadorHandler.ApproveIdentity)
		ambassadors.POST("/:userId/activate", c.AmbassadorHandler.Activate)
	}

	subs := admin.Group("/subscriptions")
	{
		subs.GET("/pending", c.SubscriptionHandler.ListPending)
		subs.POST("/manual", c.SubscriptionHandler.GrantManual)
		subs.POST("/:id/approve", c.SubscriptionHandler.Approve)
		subs.POST("/:id/reject", c.SubscriptionHandler.Reject)
	}

	commissions := admin.Group("/commissions")
	{
		commissions.POST("/deduct", c.CommissionHandler.DeductBatch)
		commissions.POST("/:id/deduct", c.CommissionHandler.Deduct)
		commissions.POST("/:id/release", c.CommissionHandler.Release)
	}
	admin.GET("/earnings/gross", c.CommissionHandler.GrossEarnings)

	wd := admin.Group("/withdrawals")
	{
		wd.GET("/pending", c.WithdrawalHandler.ListPending)
		wd.GET("/export", c.WithdrawalHandler.Export)
		wd.POST("/:id/paid", c.WithdrawalHandler.MarkPaid)
	}

	promos := admin.Group("/promo-codes")
	{
		promos.POST("", c.PromoCodeHandler.Create)
		promos.GET("", c.PromoCodeHandler.List)
		promos.DELETE("/:code", c.PromoCodeHandler.Delete)
		promos.GET("/:code/usage", c.PromoCodeHandler.Usage)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		health := gin.H{
			"status":     "ok",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"version":    appCtx.Config.App.Version,
			"store":      appCtx.Config.App.StoreDriver,
			"ws_clients": appCtx.Hub.ClientCount(),
		}

		dbStatus := "memory"
		if appCtx.DB != nil {
			dbStatus = "ok"
			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error: " + err.Error()
			}
		}

		cacheStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = "error: " + err.Error()
		}
		if appCtx.Redis == nil {
			cacheStatus = "in-process"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"cache":    cacheStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" && dbStatus != "memory" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
