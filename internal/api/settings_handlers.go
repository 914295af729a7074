package api

import (
	"database/sql"

	"scadenze/internal/models"
	"scadenze/internal/store"

	"github.com/gofiber/fiber/v2"
)

func GetSettingsHandler(db *sql.DB) fiber.Handler {
	settings := store.NewSettingsStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		cfg, err := settings.Get(userID)
		if err != nil {
			return err
		}
		if cfg == nil {
			defaults := models.DefaultReminderConfig()
			cfg = &defaults
		}
		return c.JSON(cfg)
	}
}

func UpdateSettingsHandler(db *sql.DB) fiber.Handler {
	settings := store.NewSettingsStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var cfg models.ReminderConfig
		if err := c.BodyParser(&cfg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		// Window is bounded 0-30 days.
		if cfg.ReminderDays < 0 {
			cfg.ReminderDays = 0
		}
		if cfg.ReminderDays > 30 {
			cfg.ReminderDays = 30
		}
		switch cfg.ReminderFrequency {
		case "once", "daily":
		case "":
			cfg.ReminderFrequency = "once"
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Reminder frequency must be once or daily")
		}
		switch cfg.Theme {
		case "light", "dark", "system":
		case "":
			cfg.Theme = "system"
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Unknown theme")
		}
		if cfg.ReminderTime == "" {
			cfg.ReminderTime = "09:00"
		}

		if err := settings.Upsert(userID, cfg); err != nil {
			return err
		}
		return c.JSON(cfg)
	}
}
