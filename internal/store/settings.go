package store

import (
	"database/sql"

	"scadenze/internal/models"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the user's saved reminder config, or nil when the user has
// never saved settings. Callers fall back to models.DefaultReminderConfig.
func (s *SettingsStore) Get(userID int) (*models.ReminderConfig, error) {
	var cfg models.ReminderConfig
	err := s.db.QueryRow(
		`SELECT email, reminder_days, reminder_time, reminder_frequency, theme
		FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&cfg.Email, &cfg.ReminderDays, &cfg.ReminderTime, &cfg.ReminderFrequency, &cfg.Theme)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WindowDays returns the user's reminder window, defaulting when unset.
func (s *SettingsStore) WindowDays(userID int, fallback int) (int, error) {
	cfg, err := s.Get(userID)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return fallback, nil
	}
	return cfg.ReminderDays, nil
}

func (s *SettingsStore) Upsert(userID int, cfg models.ReminderConfig) error {
	_, err := s.db.Exec(
		`INSERT INTO user_settings (user_id, email, reminder_days, reminder_time, reminder_frequency, theme, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
		email = excluded.email,
		reminder_days = excluded.reminder_days,
		reminder_time = excluded.reminder_time,
		reminder_frequency = excluded.reminder_frequency,
		theme = excluded.theme,
		updated_at = CURRENT_TIMESTAMP`,
		userID, cfg.Email, cfg.ReminderDays, cfg.ReminderTime, cfg.ReminderFrequency, cfg.Theme,
	)
	return err
}
