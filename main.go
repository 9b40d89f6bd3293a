// main.go - Daily puzzle competition service
package main

import (
	"log"
	"os"
	"time"

	"dailypuzzle/config"
	"dailypuzzle/database"
	"dailypuzzle/handlers"
	"dailypuzzle/middleware"
	"dailypuzzle/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	cfg := config.Get()

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Core services
	services.InitLifecycleService()
	services.InitScheduler(services.GetLifecycleService(), handlers.GetEventHub())

	// Start the daily activation / expiry scheduler
	services.GetScheduler().Start()
	defer services.GetScheduler().Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// Puzzle routes
	api.Get("/puzzles", handlers.ListPuzzles)
	api.Post("/puzzles", middleware.AuthMiddleware, handlers.CreatePuzzle)
	api.Post("/puzzles/:code/rate", middleware.AuthMiddleware, handlers.RatePuzzle)

	// Curator routes
	api.Post("/puzzles/:code/post", middleware.CuratorAuthMiddleware, handlers.PostManual)
	api.Post("/puzzles/:code/unscore", middleware.CuratorAuthMiddleware, handlers.UnscorePuzzle)

	// Submission route
	api.Post("/submissions", middleware.AuthMiddleware, handlers.SubmitAnswer)

	// Leaderboard routes
	leaderboardGroup := api.Group("/leaderboard")
	leaderboardGroup.Get("/", handlers.GetLeaderboard)
	leaderboardGroup.Get("/today", handlers.GetTodayLeaderboard)
	leaderboardGroup.Get("/curators", handlers.GetCuratorLeaderboard)

	// Lifecycle event feed (websocket)
	app.Use("/ws/events", handlers.UpgradeEvents)
	app.Get("/ws/events", handlers.EventsFeed)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🧩 Daily post at %s (%s), window %dh", cfg.DailyPostTime, cfg.DailyPostLocation, cfg.WindowHours)
	log.Printf("🏅 Scoring: base %d, -1/%ds, wrong penalty %d", cfg.BasePoints, cfg.DecayIntervalSeconds, cfg.WrongPenalty)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
