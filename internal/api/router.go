package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nightstay/backend-go/internal/handler"
	"github.com/nightstay/backend-go/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Location   *handler.LocationHandler
	SleepEntry *handler.SleepEntryHandler
	Stats      *handler.StatsHandler
	Calendar   *handler.CalendarHandler
}

func SetupRouter(
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	requestTimeout time.Duration,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)
	r.Use(middleware.RequestTimeout(requestTimeout))

	// Public routes
	r.GET("/api/v1/health", h.Health.Health)

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", authMiddleware.RequireAuth(), h.Auth.Me)
	}

	// Protected API routes
	api := r.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/locations", h.Location.List)
		api.POST("/locations", h.Location.Create)
		api.PATCH("/locations/:location_id", h.Location.Update)
		api.DELETE("/locations/:location_id", h.Location.Delete)

		api.GET("/sleep-entries", h.SleepEntry.List)
		api.POST("/sleep-entries", h.SleepEntry.Upsert)
		api.DELETE("/sleep-entries", h.SleepEntry.Delete)

		api.GET("/stats", h.Stats.Summary)
		api.GET("/date-ranges", h.Stats.DateRanges)

		api.GET("/calendar", h.Calendar.Show)
		api.DELETE("/calendar/entries/:date", h.Calendar.DeleteEntry)
	}

	return r
}
