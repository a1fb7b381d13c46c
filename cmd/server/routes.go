package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"wefix.backend/internal/interfaces/http/handlers"
	"wefix.backend/internal/interfaces/http/middleware"
	"wefix.backend/pkg/metrics"
)

const (
	serviceName    = "wefix-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	accountHandler      *handlers.AccountHandler
	verificationHandler *handlers.VerificationHandler
	// idempotency replays duplicate registrations; it needs Redis.
	idempotency bool
}

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(middleware.CORS(allowedOrigins))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Verification) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	register := []gin.HandlerFunc{d.accountHandler.Register}
	if d.idempotency {
		register = append([]gin.HandlerFunc{middleware.IdempotencyMiddleware()}, register...)
	}

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/register", register...)
			accounts.GET("/:id", d.accountHandler.Get)
			accounts.POST("/:id/verification/send", d.verificationHandler.SendToAccount)
		}

		verification := v1.Group("/verification")
		{
			verification.POST("/send", d.verificationHandler.Send)
			verification.POST("/verify", d.verificationHandler.Verify)
			verification.POST("/resend", d.verificationHandler.Resend)
		}
	}
}
