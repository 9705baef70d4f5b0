package transport

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/parking-system/internal/entity"
	"github.com/ds124wfegd/parking-system/internal/service"
	"github.com/ds124wfegd/parking-system/internal/transport/middleware"
)

func InitRoutes(
	authService service.AuthService,
	authHandler *AuthHandler,
	lotHandler *LotHandler,
	reservationHandler *ReservationHandler,
	analyticsHandler *AnalyticsHandler,
	userHandler *UserHandler,
) *gin.Engine {

	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes, no token required
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Routes for any authenticated user
		authorized := api.Group("")
		authorized.Use(middleware.Authenticate(authService))
		{
			authorized.GET("/auth/me", authHandler.Me)
			authorized.POST("/auth/logout", authHandler.Logout)

			lots := authorized.Group("/lots")
			{
				lots.GET("", lotHandler.GetAvailableLots)
				lots.GET("/:id", lotHandler.GetLot)
			}

			reservations := authorized.Group("/reservations")
			{
				reservations.POST("", reservationHandler.Reserve)
				reservations.POST("/:id/occupy", reservationHandler.Occupy)
				reservations.POST("/:id/release", reservationHandler.Release)
				reservations.GET("/current", reservationHandler.GetCurrent)
				reservations.GET("/history", reservationHandler.GetHistory)
				reservations.POST("/export", reservationHandler.RequestExport)
			}

			analytics := authorized.Group("/analytics")
			{
				analytics.GET("/spending", analyticsHandler.GetSpendingReport)
				analytics.GET("/usage", analyticsHandler.GetUsageReport)
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.Authenticate(authService), middleware.RequireRole(entity.RoleAdmin))
		{
			admin.POST("/lots", lotHandler.CreateLot)
			admin.GET("/lots", lotHandler.GetAllLots)
			admin.GET("/lots/:id", lotHandler.GetLot)
			admin.PUT("/lots/:id", lotHandler.UpdateLot)
			admin.DELETE("/lots/:id", lotHandler.DeleteLot)
			admin.GET("/lots/:id/spots", lotHandler.GetLotSpots)
			admin.GET("/spots/:id", lotHandler.GetSpot)

			admin.GET("/reservations", reservationHandler.GetAllReservations)

			admin.GET("/users", userHandler.GetAllUsers)
			admin.GET("/users/:id", userHandler.GetUser)

			admin.GET("/analytics/revenue", analyticsHandler.GetRevenueReport)
			admin.GET("/analytics/occupancy", analyticsHandler.GetOccupancyReport)
			admin.GET("/analytics/popular", analyticsHandler.GetPopularLots)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
