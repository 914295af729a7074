package main

import (
	"log"
	"os"
	"strings"

	"scadenze/internal/api"
	"scadenze/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	// Initialize database
	db, err := database.Initialize("./data/scadenze.db")
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run migrations only if explicitly enabled (opt-in for safety)
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		log.Println("Running database migrations...")
		if err := api.MigrateAddLastReminded(db); err != nil {
			log.Printf("Migration error (last_reminded_at): %v", err)
		}
		if err := api.MigrateAddSettingsTheme(db); err != nil {
			log.Printf("Migration error (settings theme): %v", err)
		}
	} else {
		log.Println("Migrations skipped (set RUN_MIGRATIONS=true to enable)")
	}

	// Background sweep: reconcile stale statuses and send reminder emails,
	// once at startup and then at every local midnight.
	enableWorkers := os.Getenv("ENABLE_WORKERS")
	if enableWorkers == "" {
		enableWorkers = "true"
	}

	if enableWorkers == "true" {
		log.Println("Starting background sweep...")
		api.RunSweep(db)

		scheduler := cron.New()
		if _, err := scheduler.AddFunc("0 0 * * *", func() { api.RunSweep(db) }); err != nil {
			log.Fatal("Failed to schedule daily sweep:", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Println("Background sweep disabled (set ENABLE_WORKERS=true to enable)")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	// CORS configuration: restrict to specific origins for security
	allowedOrigins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:80,http://localhost:5173" // Default for local dev
		log.Println("WARNING: Using default ALLOWED_ORIGINS. Set ALLOWED_ORIGINS env var for production.")
	} else if allowedOrigins != "*" {
		parts := strings.Split(allowedOrigins, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		allowedOrigins = strings.Join(parts, ",")
	}

	log.Printf("CORS allowed origins: %s", allowedOrigins)

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true, // Required for cookies
	}))

	// Setup routes
	api.SetupRoutes(app, db)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
