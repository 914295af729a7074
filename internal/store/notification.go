package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"scadenze/internal/models"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// ListByUser returns the 50 most recent persisted notifications.
func (s *NotificationStore) ListByUser(userID int) ([]models.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, deadline_id, kind, title, message, is_read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT 50`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.DeadlineID, &n.Kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) UnreadCount(userID int) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0",
		userID,
	).Scan(&count)
	return count, err
}

// Exists reports whether an equivalent notification is already persisted.
// Generation checks this before inserting; the dedup is advisory, not
// atomic, so two concurrent derivations can still race.
func (s *NotificationStore) Exists(userID int, deadlineID string, kind models.NotificationKind, title, message string) (bool, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM notifications
		WHERE user_id = ? AND deadline_id = ? AND kind = ? AND title = ? AND message = ?`,
		userID, deadlineID, kind, title, message,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Insert persists n with a store-assigned id, replacing any derived one.
func (s *NotificationStore) Insert(n *models.Notification) error {
	n.ID = uuid.NewString()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, deadline_id, kind, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.DeadlineID, n.Kind, n.Title, n.Message, n.Read, n.CreatedAt,
	)
	return err
}

func (s *NotificationStore) MarkRead(id string, userID int) error {
	res, err := s.db.Exec(
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(userID int) error {
	_, err := s.db.Exec(
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0",
		userID,
	)
	return err
}

func (s *NotificationStore) Delete(id string, userID int) error {
	res, err := s.db.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) DeleteAll(userID int) error {
	_, err := s.db.Exec("DELETE FROM notifications WHERE user_id = ?", userID)
	return err
}

func (s *NotificationStore) DeleteRead(userID int) error {
	_, err := s.db.Exec("DELETE FROM notifications WHERE user_id = ? AND is_read = 1", userID)
	return err
}
