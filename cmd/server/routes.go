package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"greencoin.backend/internal/domain/authz"
	"greencoin.backend/internal/interfaces/http/handlers"
	"greencoin.backend/internal/interfaces/http/middleware"
	"greencoin.backend/pkg/metrics"
)

type routeDeps struct {
	userHandler    *handlers.UserHandler
	reportHandler  *handlers.ReportHandler
	coinHandler    *handlers.CoinHandler
	wsHandler      *handlers.WSHandler
	authMiddleware gin.HandlerFunc
	wsAuth         gin.HandlerFunc
	claimLimiter   gin.HandlerFunc
	idempotency    gin.HandlerFunc
	policy         authz.Policy
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	allow := func(op authz.Operation) gin.HandlerFunc {
		return middleware.Authorize(d.policy, op)
	}

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.Use(d.authMiddleware)
		{
			users.POST("/register", allow(authz.OpRegisterUser), d.userHandler.Register)
			users.GET("/profile", allow(authz.OpGetProfile), d.userHandler.Profile)
		}

		reports := v1.Group("/reports")
		reports.Use(d.authMiddleware)
		{
			reports.POST("", allow(authz.OpCreateReport), d.idempotency, d.reportHandler.CreateReport)
			reports.GET("/available", allow(authz.OpListOpen), d.reportHandler.ListAvailable)
			reports.GET("/nearby", allow(authz.OpListNearby), d.reportHandler.ListNearby)
			reports.GET("/my-reports", allow(authz.OpListOwnReports), d.reportHandler.MyReports)
			reports.GET("/my-pickups", allow(authz.OpListOwnPickups), d.reportHandler.MyPickups)
			reports.GET("/:id", allow(authz.OpGetReport), d.reportHandler.GetReport)
			reports.PATCH("/:id/pick", allow(authz.OpClaimReport), d.claimLimiter, d.reportHandler.PickReport)
			reports.PATCH("/:id/collect", allow(authz.OpCompleteReport), d.reportHandler.CollectReport)
		}

		coins := v1.Group("/coins")
		coins.Use(d.authMiddleware)
		{
			coins.GET("/balance", allow(authz.OpGetBalance), d.coinHandler.Balance)
			coins.GET("/transactions", allow(authz.OpListTransaction), d.coinHandler.Transactions)
			coins.POST("/redeem", allow(authz.OpRedeemCoins), d.idempotency, d.coinHandler.Redeem)
		}

		v1.GET("/ws", d.wsAuth, allow(authz.OpSubscribe), d.wsHandler.Subscribe)
	}
}

func registerOpsRoutes(r *gin.Engine, health *handlers.HealthHandler) {
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// applyCORSMiddleware echoes allowed origins. "*" allows any origin but
// then never allows credentials.
func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			if !allowAll {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Headers", strings.Join([]string{
				"Authorization", "Content-Type", middleware.IdempotencyHeader, middleware.RequestIDHeader,
			}, ", "))
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
