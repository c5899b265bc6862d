package routes

import (
	"net/http"
	"time"

	"bengkelbot/handlers"
	"bengkelbot/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Gateway-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "bengkelbot up"})
	})
}

// RegisterWebhookRoutes sets up the gateway-facing ingest endpoint.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhook")
	{
		api.Use(middleware.GatewayAuthMiddleware())
		api.POST("/message", hb.WebhookHandler)
	}
}

// RegisterBookingRoutes sets up the dashboard booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.GatewayAuthMiddleware())
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.PATCH("/:id/status", hb.UpdateBookingStatusHandler)
		api.POST("/availability", hb.CheckAvailabilityHandler)
	}
}

// RegisterAdminRoutes sets up catalog and settings endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.GatewayAuthMiddleware())
		api.GET("/services", hb.ListServicesHandler)
		api.POST("/services/refresh", hb.RefreshCatalogHandler)
		api.GET("/settings/system-prompt", hb.GetSystemPromptHandler)
		api.PUT("/settings/system-prompt", hb.SetSystemPromptHandler)
	}
}
