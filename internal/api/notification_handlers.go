package api

import (
	"database/sql"
	"time"

	"scadenze/internal/deadline"
	"scadenze/internal/models"
	"scadenze/internal/store"

	"github.com/gofiber/fiber/v2"
)

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// ListNotificationsHandler returns the persisted notification records,
// newest first, with the unread counter for the bell badge.
func ListNotificationsHandler(db *sql.DB) fiber.Handler {
	notifications := store.NewNotificationStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		list, err := notifications.ListByUser(userID)
		if err != nil {
			return err
		}
		unread, err := notifications.UnreadCount(userID)
		if err != nil {
			return err
		}
		return c.JSON(notificationList{Notifications: list, UnreadCount: unread})
	}
}

// NotificationFeedHandler derives the live, non-persisted feed from the
// current deadline snapshot and the user's reminder window.
func NotificationFeedHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	settings := store.NewSettingsStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()

		ds, err := deadlines.ListByUser(userID)
		if err != nil {
			return err
		}
		window, err := settings.WindowDays(userID, deadline.DefaultReminderWindowDays)
		if err != nil {
			return err
		}

		events := deadline.Derive(ds, window, now)
		return c.JSON(notificationList{Notifications: events, UnreadCount: len(events)})
	}
}

// GenerateNotificationsHandler derives events and persists the ones not
// already stored. Dedup is a check-before-insert on (deadline, kind, title,
// message); a concurrent generate can race past it, which is accepted.
func GenerateNotificationsHandler(db *sql.DB) fiber.Handler {
	deadlines := store.NewDeadlineStore(db)
	notifications := store.NewNotificationStore(db)
	settings := store.NewSettingsStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()

		ds, err := deadlines.ListByUser(userID)
		if err != nil {
			return err
		}
		window, err := settings.WindowDays(userID, deadline.DefaultReminderWindowDays)
		if err != nil {
			return err
		}

		created := 0
		for _, event := range deadline.Derive(ds, window, now) {
			exists, err := notifications.Exists(userID, event.DeadlineID, event.Kind, event.Title, event.Message)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := notifications.Insert(&event); err != nil {
				return err
			}
			created++
		}

		return c.JSON(fiber.Map{"created": created})
	}
}

func MarkNotificationReadHandler(db *sql.DB) fiber.Handler {
	notifications := store.NewNotificationStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		if err := notifications.MarkRead(c.Params("id"), userID); err != nil {
			return storeErr(err, "Notification")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func MarkAllNotificationsReadHandler(db *sql.DB) fiber.Handler {
	notifications := store.NewNotificationStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		if err := notifications.MarkAllRead(userID); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func DeleteNotificationHandler(db *sql.DB) fiber.Handler {
	notifications := store.NewNotificationStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		if err := notifications.Delete(c.Params("id"), userID); err != nil {
			return storeErr(err, "Notification")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// DeleteNotificationsHandler clears the user's notifications; with
// ?read=true only the already-read ones go.
func DeleteNotificationsHandler(db *sql.DB) fiber.Handler {
	notifications := store.NewNotificationStore(db)
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var err error
		if c.Query("read") == "true" {
			err = notifications.DeleteRead(userID)
		} else {
			err = notifications.DeleteAll(userID)
		}
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
