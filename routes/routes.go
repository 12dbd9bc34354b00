package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/petrovis/hemjilt_backend/controllers"
	"github.com/petrovis/hemjilt_backend/middlewares"
)

// RegisterRoutes wires all API endpoints. The external lookup sits behind the
// API-key guard (and the optional rate limiter); everything else under
// /api/reports requires a session token.
func RegisterRoutes(router *gin.Engine, rateLimiter *middlewares.RateLimiter) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", controllers.Login)
	}

	external := router.Group("/api/reports/external")
	external.Use(rateLimiter.RateLimitMiddleware, middlewares.ApiKeyMiddleware())
	{
		external.GET("/:reportNo", controllers.GetReportByNo)
	}

	reports := router.Group("/api/reports")
	reports.Use(middlewares.AuthMiddleware())
	{
		reports.POST("", controllers.CreateReport)
		reports.GET("", controllers.ListReports)
		reports.GET("/:id", controllers.GetReport)
		reports.PATCH("/:id", controllers.UpdateReport)
		reports.DELETE("/:id", controllers.DeleteReport)
	}
}
