package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/container"
	"github.com/joshua-takyi/fasttrack/internal/handlers"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := c.Config.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.Locale())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health("fasttrack-api"))

		// public routes
		v1.GET("/services", handlers.ListServices(c.CatalogService))
		v1.POST("/bookings", handlers.CreateBooking(c.BookingService))
		v1.GET("/meta/booking-options", handlers.BookingOptions())
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/login", handlers.Login(c.UserService, secure))
		auth.POST("/refresh", handlers.Refresh(c.UserService, secure))
		auth.POST("/logout", handlers.Logout(c.UserService, secure))
	}

	hooks := v1.Group("/hooks")
	hooks.Use(middleware.WebhookSignature(c.Config.WebhookSecret, c.Logger))
	{
		hooks.POST("/booking-created", handlers.BookingCreatedHook(c.NotificationService))
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(c.UserService, secure, c.Logger))
	{
		admin.GET("/me", handlers.Me())

		bookingRoutes := admin.Group("/bookings")
		{
			bookingRoutes.GET("", handlers.ListBookings(c.BookingService))
			bookingRoutes.GET("/:id", handlers.GetBooking(c.BookingService))
			bookingRoutes.PATCH("/:id/status", handlers.UpdateBookingStatus(c.BookingService))
			bookingRoutes.POST("/:id/confirm", handlers.ConfirmBooking(c.BookingService))
			bookingRoutes.GET("/:id/notifications", handlers.BookingNotifications(c.BookingService))
		}

		serviceRoutes := admin.Group("/services")
		{
			serviceRoutes.GET("", handlers.ListAllServices(c.CatalogService))
			serviceRoutes.POST("", handlers.CreateService(c.CatalogService))
			serviceRoutes.PATCH("/:id", handlers.UpdateService(c.CatalogService))
			serviceRoutes.DELETE("/:id", handlers.DeleteService(c.CatalogService))
		}

		admin.POST("/push-subscriptions", handlers.Subscribe(c.SubscriptionService))
		admin.DELETE("/push-subscriptions", handlers.Unsubscribe(c.SubscriptionService))
		admin.GET("/changes", handlers.StreamChanges(c.Feed, c.StreamsDone(), c.Logger))
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})
	return r
}
