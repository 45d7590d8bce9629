package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sandy2008/recovery-compass/internal/config"
	"github.com/sandy2008/recovery-compass/internal/handlers"
	"github.com/sandy2008/recovery-compass/internal/middleware"
	"github.com/sandy2008/recovery-compass/internal/repository"
	"github.com/sandy2008/recovery-compass/internal/services"
	"github.com/sandy2008/recovery-compass/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize Firebase
	if err := config.InitFirebase(); err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer config.CloseFirebase()

	// Initialize the tip generation model
	tipService, err := services.NewTipService(context.Background(), config.GeminiAPIKey())
	if err != nil {
		log.Fatalf("Failed to initialize tip service: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize repositories and services
	userRepo := repository.NewUserRepository()
	logRepo := repository.NewLogRepository()
	cooldownRepo := repository.NewCooldownRepository()
	photoStore := storage.NewPhotoStore(config.StorageBucket, config.StorageBucketName())

	logService := services.NewLogService(logRepo, userRepo, photoStore, tipService)
	reminderService := services.NewReminderService(userRepo, logRepo, cooldownRepo, &services.FCMPusher{})

	// Initialize Gin router
	router := gin.Default()

	// Apply middleware
	router.Use(middleware.CORS())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler()
	profileHandler := handlers.NewProfileHandler()
	logHandler := handlers.NewLogHandler(logService, logRepo)
	tipHandler := handlers.NewTipHandler(logService)
	notificationHandler := handlers.NewNotificationHandler(reminderService)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Recovery Compass API is running",
		})
	})

	// API routes group
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			// Protected routes
			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware())
			{
				authProtected.POST("/update-fcm-token", authHandler.UpdateFCMToken)
				authProtected.POST("/refresh-token", authHandler.RefreshToken)
				authProtected.POST("/logout", authHandler.Logout)
			}
		}

		// Profile routes (protected)
		profile := api.Group("/profile")
		profile.Use(middleware.AuthMiddleware())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}

		// Daily log routes (protected)
		logs := api.Group("/logs")
		logs.Use(middleware.AuthMiddleware())
		{
			logs.GET("", logHandler.ListLogs)
			logs.POST("", logHandler.CreateLog)
			logs.POST("/mood", logHandler.QuickMood)
			logs.GET("/by-date/:date", logHandler.GetLogByDate)
			logs.GET("/:logId", logHandler.GetLog)
			logs.PUT("/:logId", logHandler.UpdateLog)
		}

		// Tip routes (protected)
		tips := api.Group("/tips")
		tips.Use(middleware.AuthMiddleware())
		{
			tips.POST("/generate", tipHandler.GenerateTips)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware())
		{
			notifications.POST("/remind", notificationHandler.Remind)
			notifications.GET("/cooldown", notificationHandler.CheckCooldown)
		}
	}

	// Start server
	log.Printf("🚀 Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
