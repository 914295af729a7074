package api

import (
	"database/sql"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api")

	disableRegistration := strings.ToLower(os.Getenv("DISABLE_REGISTRATION")) == "true"

	// Configuration endpoint (public)
	api.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"disableRegistration": disableRegistration,
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	if !disableRegistration {
		auth.Post("/register", RegisterHandler(db))
	}
	auth.Post("/login", LoginHandler(db))
	auth.Post("/refresh", RefreshTokenHandler(db))
	auth.Post("/logout", LogoutHandler(db))

	// Protected routes
	protected := api.Group("/", AuthMiddleware())

	// Deadline routes
	deadlines := protected.Group("/deadlines")
	deadlines.Post("/", CreateDeadlineHandler(db))
	deadlines.Get("/", ListDeadlinesHandler(db))
	deadlines.Get("/:id", GetDeadlineHandler(db))
	deadlines.Put("/:id", UpdateDeadlineHandler(db))
	deadlines.Put("/:id/toggle", ToggleCompleteHandler(db))
	deadlines.Put("/:id/renew", RenewDeadlineHandler(db))
	deadlines.Delete("/:id", DeleteDeadlineHandler(db))

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", ListNotificationsHandler(db))
	notifications.Get("/feed", NotificationFeedHandler(db))
	notifications.Post("/generate", GenerateNotificationsHandler(db))
	notifications.Put("/read-all", MarkAllNotificationsReadHandler(db))
	notifications.Put("/:id/read", MarkNotificationReadHandler(db))
	notifications.Delete("/:id", DeleteNotificationHandler(db))
	notifications.Delete("/", DeleteNotificationsHandler(db))

	// Settings routes
	settings := protected.Group("/settings")
	settings.Get("/", GetSettingsHandler(db))
	settings.Put("/", UpdateSettingsHandler(db))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
