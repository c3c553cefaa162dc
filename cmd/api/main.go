package main

import (
	"log"
	"os"
	"time"

	"github.com/goswift/goswift-backend/internal/database"
	"github.com/goswift/goswift-backend/internal/handlers"
	"github.com/goswift/goswift-backend/internal/middleware"
	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it, caching is skipped.
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	notifier := services.NewNotificationSink(db, hub)
	bookings := services.NewBookingService(db, notifier)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	r.Static("/uploads", uploadDir)

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", handlers.Signup(db))
			auth.POST("/login", handlers.Login(db))
			auth.GET("/verify-email", handlers.VerifyEmail(db))
			auth.POST("/forgot-password", handlers.ForgotPassword(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		api.GET("/cities", handlers.ListCities(db))
		api.GET("/cities/:id/areas", handlers.ListAreas(db))
		api.GET("/trips", handlers.SearchTrips(db))
		api.GET("/trips/:id", handlers.GetTrip(db))
		api.GET("/users/:id/reviews", handlers.ListUserReviews(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/photo", handlers.UploadProfilePhoto(db))
			}

			// Vehicle routes
			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", middleware.RequireRole(models.RoleOwner), handlers.RegisterVehicle(db))
				vehicles.GET("/mine", handlers.MyVehicles(db))
				vehicles.GET("/pending", middleware.RequireRole(models.RoleAdmin), handlers.PendingVehicles(db))
				vehicles.GET("/:id", handlers.GetVehicle(db))
				vehicles.PUT("/:id", handlers.UpdateVehicle(db))
				vehicles.DELETE("/:id", handlers.DeleteVehicle(db))
				vehicles.POST("/:id/verify", middleware.RequireRole(models.RoleAdmin), handlers.VerifyVehicle(db, notifier))
			}

			// Trip routes
			trips := protected.Group("/trips")
			{
				trips.POST("", middleware.RequireRole(models.RoleOwner), handlers.CreateTrip(db))
				trips.GET("/mine", handlers.MyTrips(db))
				trips.PUT("/:id", handlers.UpdateTrip(db))
				trips.POST("/:id/cancel", handlers.CancelTrip(db, notifier))
			}

			// Booking routes
			bookingRoutes := protected.Group("/bookings")
			{
				bookingRoutes.POST("", handlers.CreateBooking(db, bookings))
				bookingRoutes.GET("/mine", handlers.MyBookings(db))
				bookingRoutes.GET("/requests", handlers.BookingRequests(db))
				bookingRoutes.POST("/:id/confirm", handlers.ConfirmBooking(db, bookings))
				bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(db, bookings))
				bookingRoutes.POST("/:id/complete", handlers.CompleteBooking(db, bookings))
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.ListNotifications(db))
				notifications.GET("/unread-count", handlers.UnreadCount(db))
				notifications.POST("/:id/read", handlers.MarkNotificationRead(db))
				notifications.POST("/read-all", handlers.MarkAllNotificationsRead(db))
			}

			// Review routes
			protected.POST("/reviews", handlers.CreateReview(db))
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
