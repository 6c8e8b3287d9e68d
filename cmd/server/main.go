package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"caption_contest/internal/api"        // Custom package for API handlers
	"caption_contest/internal/cache"      // Custom package for the read-through cache
	"caption_contest/internal/config"     // Custom package for configuration
	"caption_contest/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// The signing secret is mandatory; tokens cannot be issued or verified without it
	if cfg.JWTSecret == "" {
		logrus.Fatal("FATAL ERROR: JWT_SECRET is not defined.")
	}

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// One cache instance per resource, each with its own key prefix and TTL
	imageCache := cache.New(redisClient, "image", cfg.ImageTTL)
	userCache := cache.New(redisClient, "user", cfg.UserTTL)
	captionCache := cache.New(redisClient, "caption", cfg.CaptionTTL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	auth := middleware.TokenAuthMiddleware(cfg.JWTSecret) // Token verification middleware

	// Image routes (no authorization anywhere)
	r.GET("/images", api.ListImagesHandler(db))                      // List images endpoint
	r.GET("/images/:id", api.GetImageHandler(db, imageCache))        // Get image endpoint
	r.POST("/images", api.CreateImageHandler(db))                    // Create image endpoint
	r.PUT("/images/:id", api.UpdateImageHandler(db, imageCache))     // Update image endpoint
	r.DELETE("/images/:id", api.DeleteImageHandler(db, imageCache))  // Delete image endpoint

	// User routes (mutation requires the owning user's token)
	r.GET("/users", api.ListUsersHandler(db))                              // List users endpoint
	r.GET("/users/:id", api.GetUserHandler(db, userCache))                 // Get user endpoint
	r.POST("/users", api.RegisterHandler(db))                              // Registration endpoint
	r.POST("/users/login", api.LoginHandler(db, cfg.JWTSecret))            // Login endpoint
	r.PUT("/users/:id", auth, api.UpdateUserHandler(db, userCache))        // Update user endpoint
	r.DELETE("/users/:id", auth, api.DeleteUserHandler(db, userCache))     // Delete user endpoint

	// Caption routes (creation and mutation require a token)
	r.GET("/captions/:id", api.GetCaptionHandler(db, captionCache))              // Get caption endpoint
	r.POST("/captions", auth, api.CreateCaptionHandler(db))                      // Create caption endpoint
	r.PUT("/captions/:id", auth, api.UpdateCaptionHandler(db, captionCache))     // Update caption endpoint
	r.DELETE("/captions/:id", auth, api.DeleteCaptionHandler(db, captionCache))  // Delete caption endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
